package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dorost/consult-engine/internal/infrastructure/postgres"
	"github.com/dorost/consult-engine/internal/infrastructure/redpanda"
)

func (c *cli) pool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, c.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the escalation audit schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := c.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := postgres.NewMigrator(pool, postgres.Migrations(), c.logger).Up(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "applied %d migration(s)\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := c.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := postgres.NewMigrator(pool, postgres.Migrations(), c.logger).Status(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
			for _, s := range statuses {
				applied := "pending"
				if s.AppliedAt != nil {
					applied = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%03d\t%s\t%s\n", s.Version, s.Name, applied)
			}
			return w.Flush()
		},
	})

	return cmd
}

func (c *cli) escalationsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "escalations",
		Short: "Show the most recent escalation audit rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := c.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			records, err := postgres.NewEscalationStore(pool, redpanda.TopicTriageAlerts, c.logger).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return c.print(records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show")
	return cmd
}

func (c *cli) admin() (*redpanda.Admin, error) {
	brokers := c.cfg.Brokers()
	if len(brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is not set")
	}
	return redpanda.NewAdmin(brokers, c.logger)
}

func (c *cli) topicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage consultation topics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create missing consultation topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := c.admin()
			if err != nil {
				return err
			}
			defer admin.Close()
			if err := admin.EnsureTopics(cmd.Context()); err != nil {
				return err
			}
			for _, t := range redpanda.DefaultTopicConfigs() {
				fmt.Fprintf(c.out, "%s (%d partitions)\n", t.Name, t.Partitions)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := c.admin()
			if err != nil {
				return err
			}
			defer admin.Close()
			names, err := admin.ListTopics(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(c.out, n)
			}
			return nil
		},
	})

	lag := &cobra.Command{
		Use:   "lag",
		Short: "Show consumer group lag per partition",
		RunE: func(cmd *cobra.Command, args []string) error {
			group, _ := cmd.Flags().GetString("group")
			if group == "" {
				group = c.cfg.ConsumerGroup
			}
			admin, err := c.admin()
			if err != nil {
				return err
			}
			defer admin.Close()
			lags, err := admin.GroupLag(cmd.Context(), group)
			if err != nil {
				return err
			}
			return c.print(lags)
		},
	}
	lag.Flags().String("group", "", "consumer group (defaults to CONSUMER_GROUP)")
	cmd.AddCommand(lag)
	return cmd
}

func (c *cli) outboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect the alert outbox",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show pending, retrying and recently relayed alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := c.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := postgres.NewOutbox(pool, nil, postgres.DefaultOutboxConfig(), c.logger).Stats(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(stats)
		},
	})

	var olderThan time.Duration
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete relayed rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := c.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := postgres.NewOutbox(pool, nil, postgres.DefaultOutboxConfig(), c.logger).CleanupProcessed(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "deleted %d row(s)\n", n)
			return nil
		},
	}
	cleanup.Flags().DurationVar(&olderThan, "older-than", 72*time.Hour, "age of relayed rows to delete")
	cmd.AddCommand(cleanup)
	return cmd
}
