package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zberg/go-easyremote/internal/bridge"
	"github.com/zberg/go-easyremote/internal/command"
	"github.com/zberg/go-easyremote/internal/httpapi"
	"github.com/zberg/go-easyremote/internal/metrics"
)

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().String("mqtt", "", "MQTT broker URL, enables the MQTT bridge")
	bridgeCmd.Flags().String("listen", "", "HTTP listen address, enables the HTTP API")
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Expose the console controls over MQTT and HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if broker, _ := cmd.Flags().GetString("mqtt"); broker != "" {
			cfg.MQTT.Enabled = true
			cfg.MQTT.Broker = broker
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.HTTP.Enabled = true
			cfg.HTTP.Listen = listen
		}
		if !cfg.MQTT.Enabled && !cfg.HTTP.Enabled {
			return errors.New("nothing to bridge: enable mqtt and/or http")
		}

		ctx := cmd.Context()
		s, err := getSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		log.Info("discovery finished", "controls", s.Len(), "complete", s.Complete())

		m := metrics.New()
		d := command.NewDispatcher(s, m, log.With("module", "dispatch"))

		if cfg.MQTT.Enabled {
			b := bridge.New(log, bridge.Conf{
				Broker:   cfg.MQTT.Broker,
				ClientID: cfg.MQTT.ClientID,
				User:     cfg.MQTT.User,
				Password: cfg.MQTT.Password,
				Prefix:   cfg.MQTT.Prefix,
				Qos:      cfg.MQTT.Qos,
			}, d)
			if err := b.Start(ctx); err != nil {
				return fmt.Errorf("failed to start MQTT bridge: %w", err)
			}
			defer b.Stop()
		}

		if cfg.HTTP.Enabled {
			srv := httpapi.New(log, cfg.HTTP.Listen, d, m)
			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("HTTP API: %w", err)
			}
		} else {
			<-ctx.Done()
		}

		log.Info("shutdown complete")
		return nil
	},
}
