package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maxbrain0/echo_blog/auth"
	"github.com/Maxbrain0/echo_blog/config"
	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/server"
	"github.com/Maxbrain0/echo_blog/store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// setup mongodB client
	fmt.Println("Establishing connection to MongoDB...")
	ctxDB, cancelDB := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelDB()

	client, err := mongo.Connect(ctxDB, options.Client().ApplyURI(cfg.DatabaseURL))
	if err != nil {
		log.Fatal(err)
	}
	if err := client.Ping(ctxDB, readpref.Primary()); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to MongoDB!")

	db := client.Database(cfg.DatabaseName)
	blogStore := store.NewMongo(db)
	sessionStore := store.NewSessions(db, cfg.StoreTimeout)
	if err := blogStore.EnsureIndexes(ctxDB); err != nil {
		log.Fatal(err)
	}
	if err := sessionStore.EnsureIndexes(ctxDB); err != nil {
		log.Fatal(err)
	}

	providers := auth.NewProviders(cfg)
	for _, p := range model.Providers {
		if _, ok := providers[p]; !ok {
			log.Printf("no credentials for %s, sign in with %s is disabled", p, p)
		}
	}

	e, err := server.New(server.Deps{
		Config:       cfg,
		Store:        blogStore,
		Providers:    providers,
		SessionStore: sessionStore,
	})
	if err != nil {
		log.Fatal(err)
	}

	// allows us to shut down server gracefully
	go func() {
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	// Wait for an interrupt to exit - shut down mongo and server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down the echo server...")
	ctxDisconnect, cancelDisconnect := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDisconnect()
	if err := e.Shutdown(ctxDisconnect); err != nil {
		e.Logger.Error(err)
	}
	fmt.Println("Successfully shut down echo server!")

	fmt.Println("Disconnecting from MongoDB...")
	if err := client.Disconnect(ctxDisconnect); err != nil {
		log.Fatal("Problem shutting down mongodb")
	}
	fmt.Println("Successfully disconnected from MongoDB")
}
