package main

import (
	"fmt"
	"os"

	"github.com/alfredjeanlab/worldchart/internal/client"
	"github.com/alfredjeanlab/worldchart/internal/ui"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	httpURL    string
	transport  string
	token      string
	lang       string
	jsonOutput bool
	noColor    bool

	chartClient client.ChartClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("WCHART_SERVER"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultGRPCAddr() string {
	if s := os.Getenv("WCHART_GRPC_SERVER"); s != "" {
		return s
	}
	if a := activeRemoteGRPCAddr(); a != "" {
		return a
	}
	return "localhost:9090"
}

func defaultLang() string {
	if l := os.Getenv("WCHART_LANG"); l != "" {
		return l
	}
	return activeRemoteLang()
}

func defaultToken() string {
	if t := os.Getenv("WCHART_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:           "wchart <command>",
	Short:         "CLI client for the worldchart service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.ForceNoColor()
		}
		switch transport {
		case "http":
			chartClient = client.NewHTTPClient(httpURL, token)
		case "grpc":
			c, err := client.NewGRPCClient(serverAddr, token)
			if err != nil {
				return fmt.Errorf("failed to connect to server: %w", err)
			}
			chartClient = c
		default:
			return fmt.Errorf("unknown transport %q (must be http or grpc)", transport)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if chartClient != nil {
			chartClient.Close()
		}
	},
}

// httpOnly returns the HTTP client, or an error when another transport
// was selected.
func httpOnly(what string) (*client.HTTPClient, error) {
	c, ok := chartClient.(*client.HTTPClient)
	if !ok {
		return nil, fmt.Errorf("%s is only available over http (use --transport http)", what)
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", defaultGRPCAddr(), "gRPC server address")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "http", "transport protocol (http or grpc)")
	rootCmd.PersistentFlags().StringVar(&token, "token", defaultToken(), "bearer token")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", defaultLang(), "label language (en or ko; empty = server default)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "charts", Title: "Charts:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	rootCmd.AddCommand(statisticsCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(widgetsCmd)
	rootCmd.AddCommand(invalidateCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
