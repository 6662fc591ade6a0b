/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/nsdcore/named/named"
)

var appVersion = "dev"
var appName = "named"

func main() {
	cfgFile := flag.String("config", "/etc/named.conf", "configuration file path")
	logFile := flag.String("logfile", "", "log file path (rotated via lumberjack; empty means stderr)")
	verbose := flag.Bool("verbose", false, "verbose output")
	debug := flag.Bool("debug", false, "debug output")
	flag.Parse()

	named.Globals.App = named.AppDetails{Name: appName, Version: appVersion, Mode: "server"}
	named.Globals.Verbose = *verbose
	named.Globals.Debug = *debug

	if err := named.SetupLogging(*logFile); err != nil {
		log.Fatalf("%s: error setting up logging: %v", appName, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadAndApply(*cfgFile); err != nil {
		log.Fatalf("%s: initial configuration failed: %v", appName, err)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	log.Printf("%s %s started, pid %d", appName, appVersion, os.Getpid())

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s shutting down", appName)
			return
		case <-hup:
			log.Printf("%s received SIGHUP, reloading configuration from %s", appName, *cfgFile)
			if err := loadAndApply(*cfgFile); err != nil {
				log.Printf("%s: reload failed, keeping prior configuration running: %v", appName, err)
			}
		}
	}
}

// loadAndApply runs the full load -> validate -> (assemble + reuse
// decision per zone) -> swap pipeline under the control-task token
// (§5). A failure at any step leaves the previously running
// configuration (and the Zones table) untouched.
func loadAndApply(cfgFile string) error {
	named.Globals.Lock()
	defer named.Globals.Unlock()

	cfg, err := named.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfgFile, err)
	}

	runID := "reload-" + uuid.NewString()[:8]
	ok, sink := named.Validate(cfg, named.ValidateFlags{}, runID)
	if !ok {
		return fmt.Errorf("configuration has %d error(s); first: %v", len(sink.Errors()), sink.FirstError())
	}

	// Zones are published only after every zone has assembled, so a
	// failure part-way through leaves the Zones table as it was.
	pending := make(map[string]*named.ZoneData)
	assembleZone := func(z *named.ZoneConf, view *named.ViewConf) error {
		name, err := named.CanonicalizeName(z.Name)
		if err != nil {
			return err
		}
		existing, _ := named.Zones.Get(name)
		mode := named.AssembleFresh
		if existing != nil {
			zt, _ := named.ParseZoneType(z.Type)
			// Resolve the new policy and inline-signing flag the way
			// Assemble does, so PlanReuse compares old against new.
			policyName := z.DnssecPolicy
			if policyName == "" {
				policyName = "default"
			}
			newPolicy := named.ResolveDnssecPolicy(named.NewErrorSink(runID), name, policyName, cfg.DnssecPolicies, z.Loc)
			inline := z.InlineSigning != nil && *z.InlineSigning
			if p, ok := cfg.DnssecPolicies[strings.ToLower(strings.TrimSpace(z.DnssecPolicy))]; ok && p.InlineSigning {
				inline = true
			}
			decision, reason := named.PlanReuse(existing, zt, z.File, inline, z.DnssecPolicy, newPolicy)
			if decision == named.ReuseZone {
				mode = named.AssembleUpdate
			}
			log.Printf("zone %q: reuse decision=%s reason=%s", name, decision, reason)
		}
		res := named.Assemble(cfg, view, z, &cfg.Internal, mode, existing)
		if res.Error != nil {
			return fmt.Errorf("zone %q: %w", name, res.Error)
		}
		pending[name] = res.Zone
		return nil
	}

	for i := range cfg.Zones {
		if err := assembleZone(&cfg.Zones[i], nil); err != nil {
			return err
		}
	}
	for vi := range cfg.Views {
		v := &cfg.Views[vi]
		for zi := range v.Zones {
			if err := assembleZone(&v.Zones[zi], v); err != nil {
				return err
			}
		}
	}
	for name, zd := range pending {
		named.Zones.Set(name, zd)
	}
	return nil
}
