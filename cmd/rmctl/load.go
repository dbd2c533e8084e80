package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/DanielleFiene/redditmini/internal/loader"
	"github.com/DanielleFiene/redditmini/internal/model"
	"github.com/DanielleFiene/redditmini/internal/route"
)

func runFeed() int {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: rmctl feed [flags] [category]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	category := fs.Arg(0)
	if category != "" {
		r, err := route.Parse(category)
		if err != nil || r.Kind != route.KindFeed {
			fmt.Fprintf(os.Stderr, "error: invalid category %q\n", category)
			return 2
		}
		category = r.Category
	}
	return runLoad(cf, func(ctx context.Context, l *loader.Loader) loader.State[[]model.Item] {
		return l.Feed(ctx, category)
	})
}

func runDetail() int {
	fs := flag.NewFlagSet("detail", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: rmctl detail [flags] <category> <id>")
		fmt.Fprintln(os.Stderr, "       rmctl detail [flags] <post URL or /r/x/comments/id>")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	r, err := detailRoute(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fs.Usage()
		return 2
	}
	return runLoad(cf, func(ctx context.Context, l *loader.Loader) loader.State[model.Detail] {
		return l.Detail(ctx, r.Category, r.ItemID)
	})
}

func runDaily() int {
	fs := flag.NewFlagSet("daily", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(os.Args[1:])

	return runLoad(cf, func(ctx context.Context, l *loader.Loader) loader.State[[]model.Item] {
		return l.Daily(ctx)
	})
}

func runPopular() int {
	fs := flag.NewFlagSet("popular", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(os.Args[1:])

	return runLoad(cf, func(ctx context.Context, l *loader.Loader) loader.State[[]model.Community] {
		return l.Popular(ctx)
	})
}

// detailRoute accepts either one item route or URL, or a category and an
// item id. Both forms go through route.Parse so the keys are validated.
func detailRoute(args []string) (route.Route, error) {
	var input string
	switch len(args) {
	case 1:
		input = args[0]
	case 2:
		input = "/r/" + args[0] + "/comments/" + args[1]
	default:
		return route.Route{}, fmt.Errorf("want <category> <id> or one item route, got %d arguments", len(args))
	}
	r, err := route.Parse(input)
	if err != nil {
		return route.Route{}, err
	}
	if r.Kind != route.KindDetail {
		return route.Route{}, fmt.Errorf("not an item route: %q", input)
	}
	// a slash inside either key would otherwise shift into the slug
	if len(args) == 2 && (r.Category != args[0] || r.ItemID != args[1]) {
		return route.Route{}, fmt.Errorf("invalid item key %q %q", args[0], args[1])
	}
	return r, nil
}
