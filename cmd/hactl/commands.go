package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hactl/internal/application"
	"hactl/internal/httpapi"
)

var errCommandFailed = errors.New("one or more commands failed")

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the command API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext(a.logger)
			defer cancel()

			if a.cached != nil && a.cfg.Cache.RefreshInterval > 0 {
				a.cached.StartPeriodicRefresh(ctx, a.cfg.Cache.RefreshInterval)
			}

			server := httpapi.NewServer(a.assistant, httpapi.Options{
				AuthToken:  a.cfg.HTTP.AuthToken,
				RateLimit:  a.cfg.HTTP.RateLimit,
				Metrics:    a.metrics.Handler(),
				Middleware: []func(http.Handler) http.Handler{a.metrics.Middleware},
			}, a.logger)

			a.logger.Info("starting hactl",
				"addr", a.cfg.HTTP.Addr,
				"home_assistant", a.cfg.HomeAssistant.URL,
				"cache", a.cfg.Cache.Backend,
			)
			return httpapi.ListenAndServe(ctx, a.cfg.HTTP.Addr, server.Router(), a.logger)
		},
	}
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run <command...>",
		Short: "Dispatch one command line, e.g. hactl run homeassistant kitchen light on",
		Long: `Dispatch a command of the form "<keyword> <target words...> <action>".
Several commands can be chained with "&&".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			outcomes := a.assistant.Handle(cmd.Context(), strings.Join(args, " "))

			failed := false
			for _, out := range outcomes {
				fmt.Fprintln(cmd.OutOrStdout(), out.Message)
				if !out.OK() {
					failed = true
				}
			}
			if failed {
				return errCommandFailed
			}
			return nil
		},
	}
}

func newStateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state <name...>",
		Short: "Show the state of the entity best matching name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.assistant.State(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, similarity %.2f)\n", application.DescribeState(snap), snap.EntityID, snap.Similarity)
			return nil
		},
	}
}

func newEntitiesCmd(configPath *string) *cobra.Command {
	var domainFilter string

	c := &cobra.Command{
		Use:   "entities",
		Short: "List the entities commands can target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			entities, err := a.assistant.Entities(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ENTITY\tNAME\tSTATE")
			for _, e := range entities {
				if domainFilter != "" && e.Domain() != domainFilter {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.State)
			}
			return w.Flush()
		},
	}
	c.Flags().StringVarP(&domainFilter, "domain", "d", "", "only list entities of this domain")
	return c
}
