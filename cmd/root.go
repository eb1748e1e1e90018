/*
 * Nuts node
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nuts-foundation/nuts-anchor/anchor"
	anchorCmd "github.com/nuts-foundation/nuts-anchor/anchor/cmd"
	"github.com/nuts-foundation/nuts-anchor/claim"
	"github.com/nuts-foundation/nuts-anchor/commitment"
	"github.com/nuts-foundation/nuts-anchor/core"
	"github.com/nuts-foundation/nuts-anchor/credential"
	"github.com/nuts-foundation/nuts-anchor/crypto/hash"
	"github.com/nuts-foundation/nuts-anchor/identifier"
	"github.com/nuts-foundation/nuts-anchor/storage"
	storageCmd "github.com/nuts-foundation/nuts-anchor/storage/cmd"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var stdOutWriter io.Writer = os.Stdout

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nuts-anchor",
		Short: "Anchors credential commitments on a ledger and verifies credentials against them.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
		SilenceUsage: true,
	}
}

func createPrintConfigCommand(system *core.System) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Prints the current config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			cmd.Println("Current system config")
			cmd.Println(system.Config.PrintConfig())
			return nil
		},
	}
	command.Flags().AddFlagSet(serverConfigFlags())
	return command
}

func createServerCommand(system *core.System) *cobra.Command {
	command := &cobra.Command{
		Use:   "server",
		Short: "Starts the Nuts anchor server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			return startServer(cmd.Context(), system)
		},
	}
	command.Flags().AddFlagSet(serverConfigFlags())
	return command
}

func startServer(ctx context.Context, system *core.System) error {
	logrus.Info("Starting server with config:")
	logrus.Info(system.Config.PrintConfig())

	// check config on all engines
	if err := system.Configure(); err != nil {
		return err
	}
	// start engines
	if err := system.Start(); err != nil {
		return err
	}
	shutdownHTTP, err := system.StartEchoServer()
	if err != nil {
		_ = system.Shutdown()
		return err
	}

	<-ctx.Done()
	logrus.Info("Shutting down...")
	shutdownHTTP()
	if err := system.Shutdown(); err != nil {
		return err
	}
	logrus.Info("Shutdown complete. Goodbye!")
	return nil
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version and build information.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(core.BuildInfo())
		},
	}
}

func createDigestCommand() *cobra.Command {
	var legitimations []string
	var delegation string
	command := &cobra.Command{
		Use:   "digest [claim file]",
		Short: "Digests a claim (JSON) with fresh nonces and prints the digests, nonces, root digest and credential identifier.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c claim.Claim
			if err := readJSON(cmd, args[0], &c); err != nil {
				return err
			}
			legitimationHashes := make([]hash.Blake2b256Hash, len(legitimations))
			for i, legitimation := range legitimations {
				parsed, err := hash.ParseHex(legitimation)
				if err != nil {
					return fmt.Errorf("invalid legitimation: %w", err)
				}
				legitimationHashes[i] = parsed
			}
			var delegationID *hash.Blake2b256Hash
			if delegation != "" {
				parsed, err := hash.ParseHex(delegation)
				if err != nil {
					return fmt.Errorf("invalid delegation: %w", err)
				}
				delegationID = &parsed
			}
			digests, err := commitment.Digest(c, nil)
			if err != nil {
				return err
			}
			rootDigest, err := commitment.Aggregate(digests.Hashes, legitimationHashes, delegationID)
			if err != nil {
				return err
			}
			return printJSON(cmd, struct {
				*commitment.DigestSet
				RootDigest hash.Blake2b256Hash `json:"rootDigest"`
				ID         identifier.ID       `json:"id"`
			}{
				DigestSet:  digests,
				RootDigest: rootDigest,
				ID:         identifier.FromRootDigest(rootDigest),
			})
		},
	}
	command.Flags().StringSliceVar(&legitimations, "legitimation", nil, "Root digest (hex) of a legitimation, may be repeated.")
	command.Flags().StringVar(&delegation, "delegation", "", "Delegation ID (hex).")
	return command
}

func createDeriveIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "derive-id [public credential file]",
		Short: "Derives the identifier of a public credential (JSON).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var publicCredential credential.PublicCredential
			if err := readJSON(cmd, args[0], &publicCredential); err != nil {
				return err
			}
			id, err := publicCredential.DeriveID()
			if err != nil {
				return err
			}
			cmd.Println(id)
			return nil
		},
	}
}

// readJSON reads the file, or stdin if the file is "-".
func readJSON(cmd *cobra.Command, file string, target interface{}) error {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unable to parse %s: %w", file, err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

// serverConfigFlags returns the flags of the server and all engines.
func serverConfigFlags() *pflag.FlagSet {
	set := pflag.NewFlagSet("server", pflag.ContinueOnError)
	set.AddFlagSet(core.FlagSet())
	set.AddFlagSet(storageCmd.FlagSet())
	set.AddFlagSet(anchorCmd.FlagSet())
	return set
}

// CreateCommand creates the command with all subcommands to run the system.
func CreateCommand(system *core.System) *cobra.Command {
	command := createRootCommand()
	command.SetOut(stdOutWriter)
	command.AddCommand(createServerCommand(system))
	command.AddCommand(createPrintConfigCommand(system))
	command.AddCommand(createVersionCommand())
	command.AddCommand(createDigestCommand())
	command.AddCommand(createDeriveIDCommand())
	return command
}

// CreateSystem creates the system and registers all default engines.
func CreateSystem() *core.System {
	system := core.NewSystem()

	// Create instances
	statusEngine := core.NewStatusEngine(system)
	metricsEngine := core.NewMetricsEngine()
	storageInstance := storage.New()
	anchorInstance := anchor.New(storageInstance)

	// Register HTTP routes
	system.RegisterRoutes(statusEngine.(core.Routable))
	system.RegisterRoutes(metricsEngine.(core.Routable))
	system.RegisterRoutes(anchorInstance)

	// Register engines
	// Storage is configured first, the anchor module opens its ledger store during Configure.
	system.RegisterEngine(statusEngine)
	system.RegisterEngine(metricsEngine)
	system.RegisterEngine(storageInstance)
	system.RegisterEngine(anchorInstance)
	return system
}

// Execute runs the command given by the process arguments. It blocks until the command completes,
// for the server command that is until the context is cancelled.
func Execute(ctx context.Context, system *core.System) error {
	return CreateCommand(system).ExecuteContext(ctx)
}
