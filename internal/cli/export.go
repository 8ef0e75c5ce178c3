package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flow-ai/chatcore/internal/config"
	"flow-ai/chatcore/internal/database"
	"flow-ai/chatcore/internal/model"
	"flow-ai/chatcore/internal/repository"
)

func newExportCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <conversation-id>",
		Short: "Dump a stored conversation",
		Long:  `Print a stored conversation with all its messages as JSON or YAML.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("invalid format %q (use json or yaml)", format)
			}

			repo, closeStore, err := opts.openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			full, err := loadConversation(cmd.Context(), repo, args[0])
			if err != nil {
				return err
			}
			return writeConversation(cmd.OutOrStdout(), full, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

func (o *options) openRepository(ctx context.Context) (repository.Repository, func(), error) {
	switch o.store {
	case config.DriverSQLite:
		db, err := database.InitDB(o.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return repository.NewSQLiteRepository(db), func() { _ = db.Close() }, nil
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{Addr: o.redis})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", o.redis, err)
		}
		return repository.NewRedisRepository(rdb), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", o.store)
	}
}

func loadConversation(ctx context.Context, repo repository.Repository, id string) (*model.FullConversation, error) {
	conv, err := repo.GetConversation(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	messages, err := repo.GetMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.FullConversation{Conversation: *conv, Messages: messages}, nil
}

func writeConversation(w io.Writer, full *model.FullConversation, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(full); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(full)
}
