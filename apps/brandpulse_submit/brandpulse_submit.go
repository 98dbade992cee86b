package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/brandpulse/brandpulse-demo/submission"
	"github.com/brandpulse/brandpulse-demo/util/cli"
)

type options struct {
	help         bool
	jerseyImages cli.StringList
	mode         string
	name         string
	number       int
	playerImages cli.StringList
	video        string
}

func main() {
	opts := parseOptions()
	if opts.help {
		printHelp()
		flag.PrintDefaults()
		os.Exit(0)
	}

	_context := common.NewContext()
	if opts.mode != "" {
		_context.Config.WireMode = opts.mode
		_context = common.NewContextWithLogger(_context.Config, _context.Logger)
	}

	req, err := loadRequest(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	sub := submission.NewController(_context).Submit(context.Background(), req)
	jsonData, err := sub.ToJSON()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	fmt.Println(jsonData)
	if !sub.Succeeded() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", sub.ErrorKind, sub.ErrorMessage)
		os.Exit(1)
	}
}

func parseOptions() *options {
	opts := &options{}
	flag.BoolVar(&opts.help, "help", false, "Print help message")
	flag.Var(&opts.jerseyImages, "jersey-image", "Path to a jersey image. Repeat for up to 2 images.")
	flag.StringVar(&opts.mode, "mode", "", "multipart or reference. Defaults to WIRE_MODE.")
	flag.StringVar(&opts.name, "name", "", "Player name")
	flag.IntVar(&opts.number, "number", 0, "Player jersey number, 1-99")
	flag.Var(&opts.playerImages, "player-image", "Path to a player image. Repeat for up to 4 images.")
	flag.StringVar(&opts.video, "video", "", "Path to the game video")
	flag.Parse()
	return opts
}

// loadRequest reads the files named on the command line. A missing
// -video is left for the validator to report.
func loadRequest(opts *options) (*service.UploadRequest, error) {
	req := &service.UploadRequest{
		PlayerName:   opts.name,
		PlayerNumber: opts.number,
	}
	var err error
	if opts.video != "" {
		if req.Video, err = service.MediaBlobFromFile(opts.video); err != nil {
			return nil, err
		}
	}
	if req.PlayerImages, err = loadBlobs(opts.playerImages); err != nil {
		return nil, err
	}
	if req.JerseyImages, err = loadBlobs(opts.jerseyImages); err != nil {
		return nil, err
	}
	return req, nil
}

func loadBlobs(paths []string) ([]*service.MediaBlob, error) {
	blobs := make([]*service.MediaBlob, len(paths))
	for i, path := range paths {
		blob, err := service.MediaBlobFromFile(path)
		if err != nil {
			return nil, err
		}
		blobs[i] = blob
	}
	return blobs, nil
}

func printHelp() {
	message := `
brandpulse_submit runs one player tracking submission from the command
line and prints the resulting submission as JSON. It exits with status 1
if the submission did not succeed.

Example:

    brandpulse_submit -video game.mp4 -player-image face1.jpg \
        -player-image face2.jpg -jersey-image front.png \
        -name "John Doe" -number 23 -mode reference
`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
