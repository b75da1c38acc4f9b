package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/maalgodam/app/repositories"
	"github.com/shashiranjanraj/maalgodam/config"
	"github.com/shashiranjanraj/maalgodam/database"
	"github.com/shashiranjanraj/maalgodam/database/seeders"
)

// maalgodam db:seed
var seedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Insert sample inventory items",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := database.Connect(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		repo := repositories.NewItemRepository(database.ItemsCollection(client), nil)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}

		fmt.Println("Seeding items…")
		return seeders.Run(ctx, repo)
	},
}
