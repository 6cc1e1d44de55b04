package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
)

// ResetDB drops the whole POS database. Destructive; meant for development
// environments only.
func ResetDB(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Info("Starting database reset...")

	client, dbName, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	if err := client.Database(dbName).Drop(ctx); err != nil {
		return fmt.Errorf("drop database %s: %w", dbName, err)
	}

	logger.Info("Dropped database", "name", dbName)
	return nil
}
