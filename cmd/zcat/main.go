package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

var opts struct {
	Profile string `short:"p" long:"profile" description:"override AWS_PROFILE if given (only used for s3:// archives)" default-mask:"-"`

	List    ListCommand    `command:"list" alias:"ls" description:"list the entries of a zip archive without extracting them"`
	Extract ExtractCommand `command:"extract" alias:"x" description:"stream a zip archive's entries to a directory"`
}

func main() {
	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(command flags.Commander, args []string) error {
		if opts.Profile != "" {
			if err := os.Setenv("AWS_PROFILE", opts.Profile); err != nil {
				return fmt.Errorf("set AWS_PROFILE error: %w", err)
			}
		}

		return command.Execute(args)
	}

	_, err := p.Parse()
	exit(err)
}
