// Package blm reads BLM files, the section-tagged flat-file export format used by
// property portals.
//
// # File Format
//
// A BLM file is made of four tagged sections, each introduced by a line of the form
// #NAME#:
//
//	#HEADER#
//	Version : 3
//	EOF : '^'
//	EOR : '~'
//	Property Count : 2
//	Generated Date : 13-Jan-2024 15:12
//	#DEFINITION#
//	AGENT_REF^ADDRESS_1^PRICE^~
//	#DATA#
//	1_001^Fox Cottage^250000^~
//	1_002^Mill House^325000^~
//	#END#
//
// The HEADER declares the field delimiter (EOF, end of field) and the record
// delimiter (EOR, end of record). Both are written as a short token whose second
// character is the delimiter byte. The DEFINITION section holds the column names
// and the DATA section holds the records.
//
// # Usage
//
//	f, err := blm.Open("export.blm")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	p := blm.NewParser(f)
//	if err := p.LoadRecord(0); err != nil {
//	    return err
//	}
//	price := p.Query("PRICE")
//
// Sections and header metadata are read when the file is opened. The record index
// is built lazily by a single forward pass over DATA the first time a record is
// requested, and memoized for the lifetime of the File. In processing (preview)
// mode indexing stops after two records or once a byte threshold is crossed.
//
// # Thread Safety
//
// A File owns its handle and seek position. It is not safe for concurrent use;
// open one File per goroutine.
package blm
