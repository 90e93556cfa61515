package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timada-org/todo/internal/core"
	"github.com/timada-org/todo/pkg/client"
	"github.com/timada-org/todo/pkg/topic"
)

var (
	publishTopic string
	publishName  string
	publishData  string

	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Publish a single event to the configured broker",

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := core.NewConfig(cfgFile)
			if err != nil {
				return err
			}

			if !config.Broker.Enabled() {
				return errors.New("broker url is not configured")
			}

			name, err := topic.NewName(publishTopic)
			if err != nil {
				return err
			}

			var data any
			if publishData != "" {
				if err := json.Unmarshal([]byte(publishData), &data); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}

			c, err := client.New(client.ClientOptions{
				URL:   config.Broker.URL,
				Topic: config.Broker.Topic,
				Name:  config.Broker.Name + "-cli",
			})
			if err != nil {
				return err
			}
			defer c.Close()

			return c.Send(cmd.Context(), &client.Event{
				Topic: name,
				Name:  publishName,
				Data:  data,
			})
		},
	}
)

func init() {
	publishCmd.Flags().StringVar(&publishTopic, "topic", "todos", "event topic name")
	publishCmd.Flags().StringVar(&publishName, "name", "Created", "event name")
	publishCmd.Flags().StringVar(&publishData, "data", "", "JSON event data")
}
