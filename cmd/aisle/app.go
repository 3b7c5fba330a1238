package main

import (
	"errors"

	"github.com/aisle-md/aislemd/internal/config"
	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/lookup"
	"github.com/aisle-md/aislemd/internal/reminders"
	"github.com/aisle-md/aislemd/internal/usecase"
)

// app is the wired shopping list for one command invocation.
type app struct {
	dbCtx *database.Context
	list  *usecase.ShoppingList
}

func openApp(c config.Config) (*app, error) {
	dbCtx, err := database.CreateDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	list := usecase.NewShoppingList(
		database.NewItemRepository(dbCtx),
		reminders.NewCLI(c.RemindersCommand, c.ListName),
		lookup.NewClient(c.LookupBaseURL, c.StoreID, c.LookupTimeout),
		usecase.Options{
			Workers:       c.Workers,
			LookupTimeout: c.LookupTimeout,
			Logger:        logger,
		},
	)

	return &app{dbCtx: dbCtx, list: list}, nil
}

func (a *app) Close() {
	_ = database.CloseDatabase(a.dbCtx)
}

func requireStoreID(c config.Config) error {
	if c.StoreID == "" {
		return errors.New("store id is not configured: set STORE_ID or store_id in the config file")
	}
	return nil
}
