package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/nicolagi/blogposts/blog"
	"github.com/nicolagi/blogposts/server"
	log "github.com/sirupsen/logrus"
)

func main() {
	defaultConfigFile := os.ExpandEnv("$HOME/lib/blog/blogserver.config")
	configFile := flag.String("config", defaultConfigFile, "location of configuration file")
	flag.Parse()
	configRequired := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configRequired = true
		}
	})

	opts, err := loadConfig(*configFile, configRequired)
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"path": *configFile,
		}).Fatal("Could not load configuration")
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if opts.Gops {
		if err := agent.Listen(agent.Options{
			ShutdownCleanup: true,
		}); err != nil {
			log.WithField("err", err).Warn("Could not start gops agent")
		} else {
			defer agent.Close()
		}
	}

	store, key, closeStore, err := openStore(opts)
	if err != nil {
		log.WithFields(log.Fields{
			"err":     err,
			"backend": opts.Backend,
		}).Fatal("Could not open storage")
	}
	defer closeStore()

	posts := blog.NewCollection(store, key)
	if err := posts.Load(); err != nil {
		log.WithField("err", err).Error("Could not read blog posts, starting with none")
	}

	srv := server.New(server.WithAddress(opts.Address), server.WithCollection(posts))
	addr, err := srv.Listen()
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"addr": opts.Address,
		}).Fatal("Could not listen")
	}
	log.WithField("addr", addr).Infof("Server running at %s", serverURL(addr))

	// Serve returns once Shutdown is called, letting deferred clean-up run.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sig := <-c
		log.WithField("signal", sig).Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithField("err", err).Warn("Could not shut down the server cleanly")
		}
	}()

	if err := srv.Serve(); err != nil {
		log.WithField("err", err).Error("Could not serve")
		return
	}
	<-stopped
}

// serverURL turns a listener address into a URL, using localhost for the
// unspecified address.
func serverURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, port))
}
