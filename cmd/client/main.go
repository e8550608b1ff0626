// Package main is a command-line client for the catalog API. It hosts
// the same offline mark cache the mobile shell embeds, which makes it
// handy for poking at a deployed server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"fishdex/application/sync"
	"fishdex/domain/identity"
	"fishdex/domain/marks"
	"fishdex/infrastructure/gateway/resthttp"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "API server base URL")
	userID := flag.String("user", "", "identity to act as (defaults to a fresh anonymous id)")
	entryID := flag.String("entry", "", "catalog entry id")
	lat := flag.Float64("lat", 0, "latitude for mark")
	lng := flag.Float64("lng", 0, "longitude for mark")
	address := flag.String("address", "", "address for mark (skips geocoding)")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	session := identity.NewSession()
	if *userID != "" {
		authenticated, err := identity.NewAuthenticated(*userID, "")
		if err != nil {
			log.Fatalf("Invalid user id: %v", err)
		}
		if err := session.Login(authenticated); err != nil {
			log.Fatalf("Failed to assume identity: %v", err)
		}
	}

	gateway := resthttp.NewGateway(*serverURL, logger)
	geocoder := resthttp.NewRemoteGeocoder(gateway, func() string {
		return session.Current().ID()
	})

	store := marks.NewStore(3)
	buffer := marks.NewPendingBuffer()
	service := sync.NewService(store, buffer, gateway, geocoder, session, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch command {
	case "list":
		if err := service.Bootstrap(ctx, *entryID); err != nil {
			log.Fatalf("Bootstrap failed: %v", err)
		}
		for _, entity := range store.Entities() {
			for _, mark := range store.Get(entity) {
				fmt.Printf("%s\t%s\t%s\t%s\n", entity, mark.ID, mark.Address, mark.RecordedAt.Format(time.RFC3339))
			}
		}

	case "mark":
		if *entryID == "" {
			log.Fatal("mark requires -entry")
		}
		var mark marks.Mark
		if *address != "" {
			mark, err = service.AddMark(ctx, *entryID, *address)
		} else {
			mark, err = service.RecordMark(ctx, *entryID, *lat, *lng)
		}
		if err != nil {
			log.Fatalf("Mark failed: %v", err)
		}
		service.Wait()
		fmt.Printf("recorded %s at %s\n", mark.EntityID, mark.Address)

	case "flush":
		if err := service.FlushPending(ctx); err != nil {
			log.Fatalf("Flush failed: %v", err)
		}
		fmt.Println("flushed")

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: client [flags] list|mark|flush")
	flag.PrintDefaults()
}
