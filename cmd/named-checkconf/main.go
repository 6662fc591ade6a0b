/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nsdcore/named/named"
)

var (
	cfgFile               string
	checkPlugins          bool
	checkDnssecAlgorithms bool
	verbose, debug        bool
)

var appVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "named-checkconf",
	Short: "named-checkconf validates a named-style configuration file",
	RunE:  runCheck,
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "print the zones that would be assembled from the configuration",
	RunE:  runZones,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	pflag.CommandLine = rootCmd.PersistentFlags()
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "/etc/named.conf", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "debug output")
	rootCmd.Flags().BoolVarP(&checkPlugins, "check-plugins", "p", false, "also invoke each plugin's own validator")
	rootCmd.Flags().BoolVar(&checkDnssecAlgorithms, "check-dnssec-algorithms", false, "reject unsupported DNSSEC algorithms")
	rootCmd.AddCommand(zonesCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	named.Globals.Verbose = verbose
	named.Globals.Debug = debug
	named.SetupCliLogging()

	cfg, err := named.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cfgFile, err)
		os.Exit(1)
	}

	ok, sink := named.Validate(cfg, named.ValidateFlags{
		CheckPlugins:          checkPlugins,
		CheckDnssecAlgorithms: checkDnssecAlgorithms,
	}, newRunID())

	for _, w := range sink.Warnings() {
		fmt.Fprintf(os.Stderr, "%s\n", w.Error())
	}
	if !ok {
		for _, e := range sink.Errors() {
			fmt.Fprintf(os.Stderr, "%s\n", e.Error())
		}
		os.Exit(1)
	}
	fmt.Println("configuration OK")
	return nil
}

func runZones(cmd *cobra.Command, args []string) error {
	named.Globals.Verbose = verbose
	cfg, err := named.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	ok, sink := named.Validate(cfg, named.ValidateFlags{}, newRunID())
	if !ok {
		for _, e := range sink.Errors() {
			fmt.Fprintf(os.Stderr, "%s\n", e.Error())
		}
		os.Exit(1)
	}
	internal := &cfg.Internal
	printZone := func(z *named.ZoneConf, view *named.ViewConf) {
		res := named.Assemble(cfg, view, z, internal, named.AssembleFresh, nil)
		if res.Error != nil {
			fmt.Printf("%-40s ERROR: %v\n", z.Name, res.Error)
			return
		}
		fmt.Printf("%-40s type=%-12s view=%s\n", res.Zone.ZoneName, named.ZoneTypeToString[res.Zone.Type], res.Zone.ViewName)
	}
	for i := range cfg.Zones {
		printZone(&cfg.Zones[i], nil)
	}
	for vi := range cfg.Views {
		v := &cfg.Views[vi]
		for zi := range v.Zones {
			printZone(&v.Zones[zi], v)
		}
	}
	return nil
}

func newRunID() string {
	return "checkconf-" + uuid.NewString()[:8]
}
