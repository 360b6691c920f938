package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-google-gateway/internal/config"
	"github.com/jrsteele09/go-google-gateway/internal/logging"
	"github.com/jrsteele09/go-google-gateway/state"
	"github.com/spf13/cobra"
)

// decodedState is the printed form of a state.Request.
type decodedState struct {
	State       string `json:"state"`
	RedirectURI string `json:"redirect_uri"`
}

var errNoStateSecret = errors.New("STATE_SECRET must be set to encode or decode state values")

func newRootCmd() *cobra.Command {
	var envFile string
	var settings *config.Settings

	root := &cobra.Command{
		Use:           "gateway",
		Short:         "OAuth2 gateway for Google Calendar, Drive and Gmail",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(envFile)
			if err != nil {
				return err
			}
			logging.Setup(c.GetLogLevel(), c.GetLogFormat())
			settings = c
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), settings)
		},
	}
	root.RunE = serve.RunE
	root.AddCommand(serve, newStateCmd(func() *config.Settings { return settings }))
	return root
}

// newStateCmd groups helpers for inspecting the opaque state parameter.
func newStateCmd(settings func() *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Encode or decode the state parameter sent to Google",
	}

	codec := func() (*state.Codec, error) {
		c := settings()
		if len(c.GetStateSecret()) == 0 {
			return nil, errNoStateSecret
		}
		maxAge, err := c.GetStateMaxAgeSeconds()
		if err != nil {
			return nil, err
		}
		return state.NewCodec(state.Options{
			HashKey:            c.GetStateSecret(),
			MaxAge:             maxAge,
			DefaultRedirectURI: c.GetDefaultRedirectURI(),
			AllowedSchemes:     c.GetAllowedRedirectSchemes(),
		}), nil
	}

	var callerState, redirectURI string
	encode := &cobra.Command{
		Use:   "encode",
		Short: "Print the state value for a caller state and redirect target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec()
			if err != nil {
				return err
			}
			if redirectURI == "" {
				redirectURI = c.DefaultRedirectURI()
			}
			token, err := c.Encode(callerState, redirectURI)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	encode.Flags().StringVar(&callerState, "state", state.DefaultCallerState, "caller state")
	encode.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect target (default MOBILE_REDIRECT_URI)")

	var fallback bool
	decode := &cobra.Command{
		Use:   "decode <state>",
		Short: "Print the caller state and redirect target carried by a state value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec()
			if err != nil {
				return err
			}

			var req state.Request
			if fallback {
				req, _ = c.Resolve(args[0])
			} else if req, err = c.Decode(args[0]); err != nil {
				return err
			}

			out, err := json.MarshalIndent(decodedState{State: req.State, RedirectURI: req.RedirectURI}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	decode.Flags().BoolVar(&fallback, "fallback", false, "apply the callback fallback instead of failing")

	cmd.AddCommand(encode, decode)
	return cmd
}
