// SPDX-License-Identifier: MIT

// vidstash is the maintenance CLI for the local media/post store.
//
// Usage:
//
//	vidstash [-config vidstash.yaml] [-user id] <command> [args]
//
// Commands:
//
//	media list
//	media ingest-url <url>...
//	media ingest-file <path>...
//	post list
//	post create -name <name> <media-id>...
//	post delete <post-id>
//
// Exit codes:
//   - 0: success
//   - 1: operation failed
//   - 2: usage error
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/vidstash/vidstash/internal/config"
	xslog "github.com/vidstash/vidstash/internal/log"
	"github.com/vidstash/vidstash/internal/media"
	mediastore "github.com/vidstash/vidstash/internal/media/store"
	"github.com/vidstash/vidstash/internal/post"
	postmodel "github.com/vidstash/vidstash/internal/post/model"
	poststore "github.com/vidstash/vidstash/internal/post/store"
)

var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("vidstash", flag.ContinueOnError)
	var (
		configPath  string
		userID      string
		showVersion bool
	)
	fs.StringVar(&configPath, "config", "", "path to YAML configuration file")
	fs.StringVar(&userID, "user", "", "user partition to operate on (default guest)")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if showVersion {
		fmt.Println(Version)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	xslog.Configure(xslog.Config{Level: cfg.LogLevel})
	logger := xslog.WithComponent("cli")

	rest := fs.Args()
	if len(rest) < 2 {
		usage(fs)
		return 2
	}

	ctx := context.Background()

	switch rest[0] {
	case "media":
		st, err := mediastore.Open(cfg.MediaBackend, cfg.DataDir)
		if err != nil {
			logger.Error().Err(err).Str(xslog.FieldBackend, cfg.MediaBackend).Msg("open media store")
			return 1
		}
		defer func() { _ = st.Close() }()

		reg, err := media.NewRegistry(st, cfg.HandleDir)
		if err != nil {
			logger.Error().Err(err).Msg("init media registry")
			return 1
		}
		defer func() { _ = reg.Close() }()

		return runMedia(ctx, reg, userID, rest[1], rest[2:])

	case "post":
		st, err := poststore.NewFileStore(cfg.PostStorePath)
		if err != nil {
			logger.Error().Err(err).Str(xslog.FieldPath, cfg.PostStorePath).Msg("open post store")
			return 1
		}
		defer func() { _ = st.Close() }()

		return runPost(post.NewRegistry(st), userID, rest[1], rest[2:])

	default:
		usage(fs)
		return 2
	}
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  vidstash [flags] media list|ingest-url|ingest-file ...")
	fmt.Fprintln(os.Stderr, "  vidstash [flags] post list|create|delete ...")
	fmt.Fprintln(os.Stderr, "")
	fs.PrintDefaults()
}

func runMedia(ctx context.Context, reg *media.Registry, userID, cmd string, args []string) int {
	switch cmd {
	case "list":
		records, err := reg.ListAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		for _, rec := range records {
			ref := rec.OriginalURL
			if ref == "" {
				ref = rec.FileName
			}
			fmt.Printf("%s\t%s\t%s\t%s\n", rec.ID, rec.Source, rec.UserID, ref)
		}
		return 0

	case "ingest-url":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Error: at least one URL required")
			return 2
		}
		for _, url := range args {
			rec, err := reg.IngestRemote(ctx, url, userID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error ingesting %s: %v\n", url, err)
				return 1
			}
			fmt.Printf("%s\t%s\n", rec.ID, rec.OriginalURL)
		}
		return 0

	case "ingest-file":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Error: at least one file path required")
			return 2
		}
		for _, path := range args {
			data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
				return 1
			}
			rec, err := reg.IngestLocal(ctx, media.LocalUpload{
				FileName: filepath.Base(path),
				MimeType: mime.TypeByExtension(filepath.Ext(path)),
				Data:     data,
			}, userID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error ingesting %s: %v\n", path, err)
				return 1
			}
			fmt.Printf("%s\t%s\n", rec.ID, rec.FileName)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown media command %q\n", cmd)
		return 2
	}
}

func runPost(reg *post.Registry, userID, cmd string, args []string) int {
	switch cmd {
	case "list":
		posts, err := reg.List(userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		for i := range posts {
			p := &posts[i]
			fmt.Printf("%s\t%s\t%d media\t%s\n",
				p.ID, postmodel.DisplayLabel(p, "Untitled post"), len(p.MediaIDs), p.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return 0

	case "create":
		cfs := flag.NewFlagSet("post create", flag.ContinueOnError)
		var name, title, description string
		cfs.StringVar(&name, "name", "", "post name")
		cfs.StringVar(&title, "title", "", "post title")
		cfs.StringVar(&description, "description", "", "post description")
		if err := cfs.Parse(args); err != nil {
			return 2
		}
		mediaIDs := cfs.Args()
		rec, err := reg.Create(post.CreateInput{
			UserID:      userID,
			Name:        name,
			Title:       title,
			Description: description,
			MediaIDs:    mediaIDs,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(rec.ID)
		return 0

	case "delete":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Error: exactly one post id required")
			return 2
		}
		if err := reg.Delete(userID, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown post command %q\n", cmd)
		return 2
	}
}
