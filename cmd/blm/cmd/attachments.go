/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/blmreader/pkg/blm"
)

// attachmentsCmd represents the attachments command
var attachmentsCmd = &cobra.Command{
	Use:   "attachments <file> <n> <field>",
	Short: "Extract the media files a record refers to",
	Long: `Extract the files named in a record field from the zip archive shipped
alongside the BLM file (feed.blm pairs with feed.zip). The field holds one or
more comma-separated entry names. Names missing from the archive are reported.

Example:
  blm attachments feed.blm 0 MEDIA_IMAGE_00 --dest ./media`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("dest")
		archive, _ := cmd.Flags().GetString("archive")
		if archive == "" {
			archive = blm.CompanionZipPath(args[0])
		}

		p, closeFile, err := loadRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		defer closeFile()

		names, err := p.Lookup(args[2])
		if err != nil {
			return err
		}

		paths, err := blm.ExtractAttachments(archive, names, dest)
		if err != nil {
			return err
		}
		for _, path := range paths {
			if path == "" {
				cmd.Println("(missing)")
				continue
			}
			cmd.Println(path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(attachmentsCmd)
	attachmentsCmd.Flags().String("dest", ".", "Directory to extract into")
	attachmentsCmd.Flags().String("archive", "", "Zip archive to read (default: the file's companion .zip)")
}
