// signpack re-packages distribution archives so that every embedded library
// needing a digital signature is signed exactly once, no matter how many
// times identical bytes appear across the batch. Managed-code packages go
// through jarsigner, native libraries through the platform signtool; every
// other entry passes through unchanged.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/signpack/signpack/batch"
	"github.com/signpack/signpack/config"
	"github.com/signpack/signpack/keystore"
	"github.com/signpack/signpack/prompt"
	"github.com/signpack/signpack/signing/entities"
	"github.com/signpack/signpack/signing/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		source      string
		dest        string
		ksPath      string
		ksAlias     string
		fingerprint string
		jarsigner   string
		signtool    string
		tsaURL      string
		proxyHost   string
		proxyPort   string
		digest      string
		glob        string
		verbose     bool
	)

	flagSet := pflag.NewFlagSet("signpack", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML configuration file")
	flagSet.StringVar(&source, "source", "", "directory containing the archives to sign")
	flagSet.StringVar(&dest, "dest", "", "directory receiving the signed archives (must be empty)")
	flagSet.StringVar(&ksPath, "keystore", "", "PKCS#12 keystore holding the signing credential")
	flagSet.StringVar(&ksAlias, "alias", "", "keystore entry alias")
	flagSet.StringVar(&fingerprint, "fingerprint", "", "expected SHA-256 certificate fingerprint (hex)")
	flagSet.StringVar(&jarsigner, "jarsigner", "", "path to the JDK jarsigner executable")
	flagSet.StringVar(&signtool, "signtool", "", "path to the platform signtool executable")
	flagSet.StringVar(&tsaURL, "tsa", "", "timestamp authority URL")
	flagSet.StringVar(&proxyHost, "proxy-host", "", "outbound HTTP proxy host for timestamping")
	flagSet.StringVar(&proxyPort, "proxy-port", "", "outbound HTTP proxy port for timestamping")
	flagSet.StringVar(&digest, "digest", "", "file digest algorithm for native signing")
	flagSet.StringVar(&glob, "glob", "", "archive name pattern within the source directory")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %q", args[0])
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	// Flags override file values.
	overlay(&cfg.Source, source)
	overlay(&cfg.Dest, dest)
	overlay(&cfg.Keystore.Path, ksPath)
	overlay(&cfg.Keystore.Alias, ksAlias)
	overlay(&cfg.Keystore.Fingerprint, fingerprint)
	overlay(&cfg.Tools.JarSigner, jarsigner)
	overlay(&cfg.Tools.SignTool, signtool)
	overlay(&cfg.TSAURL, tsaURL)
	overlay(&cfg.Proxy.Host, proxyHost)
	overlay(&cfg.Proxy.Port, proxyPort)
	overlay(&cfg.Digest, digest)
	overlay(&cfg.Glob, glob)

	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Everything the run depends on must exist before the operator types
	// the password.
	if err := preflight(cfg); err != nil {
		return err
	}

	password, err := prompt.NewPrompter().Password("Keystore password")
	if err != nil {
		return err
	}

	ks, err := keystore.Load(cfg.Keystore.Path, cfg.Keystore.Alias, password, cfg.Keystore.Fingerprint, logger)
	if err != nil {
		return err
	}
	logger.Info("keystore unlocked",
		"alias", ks.Alias,
		"subject", ks.Certificate.Subject.CommonName,
		"fingerprint", ks.Fingerprint)

	signers := tools.Signers(tools.NewExecRunner(), logger, tools.Options{
		JarSignerTool: cfg.Tools.JarSigner,
		SignToolTool:  cfg.Tools.SignTool,
		Keystore:      cfg.Keystore.Path,
		Alias:         cfg.Keystore.Alias,
		Password:      password,
		TSAURL:        cfg.TSAURL,
		ProxyHost:     cfg.Proxy.Host,
		ProxyPort:     cfg.Proxy.Port,
		Digest:        cfg.Digest,
	})

	coordinator := batch.NewCoordinator(signers, cfg.Glob, logger)
	return coordinator.Run(context.Background(), cfg.Source, cfg.Dest)
}

func overlay(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

// preflight asserts every configured path before the operator is prompted
// for the password: both directories, the keystore, and both tools.
func preflight(cfg config.Config) error {
	dirs := []struct {
		path string
		what string
	}{
		{cfg.Source, "folder with unsigned archives does not exist"},
		{cfg.Dest, "folder for signed archives does not exist, please create"},
	}
	for _, d := range dirs {
		info, err := os.Stat(d.path)
		if err != nil || !info.IsDir() {
			return &entities.ConfigError{Path: d.path, Reason: d.what}
		}
	}

	if _, err := os.Stat(cfg.Keystore.Path); err != nil {
		return &entities.ConfigError{Path: cfg.Keystore.Path, Reason: "the keystore to be used for signing is not found"}
	}

	lookups := []struct {
		tool string
		what string
	}{
		{cfg.Tools.JarSigner, "jarsigner can't be found, this tool is part of any JDK installation"},
		{cfg.Tools.SignTool, "signtool can't be found"},
	}
	for _, l := range lookups {
		if filepath.IsAbs(l.tool) || filepath.Base(l.tool) != l.tool {
			if _, err := os.Stat(l.tool); err != nil {
				return &entities.ConfigError{Path: l.tool, Reason: l.what}
			}
			continue
		}
		if _, err := exec.LookPath(l.tool); err != nil {
			return &entities.ConfigError{Path: l.tool, Reason: l.what}
		}
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage: signpack [flags]

Signs every .jar and .dll inside the zip archives of a source directory and
writes the re-packed archives to an empty destination directory. Identical
libraries (by content checksum) are signed once and reused.

Flags:
%s`, flagSet.FlagUsages())
}
