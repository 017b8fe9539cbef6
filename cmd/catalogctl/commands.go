package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gocatalog/internal/auth"
	"gocatalog/internal/catalog"
	"gocatalog/internal/common"
	"gocatalog/internal/config"
	"gocatalog/internal/dbpostgres"
	"gocatalog/internal/media"
)

var out io.Writer = os.Stdout

type hashPasswordCommand struct {
	Args struct {
		Password string `positional-arg-name:"password" required:"yes"`
	} `positional-args:"yes"`
}

func (c *hashPasswordCommand) Execute(args []string) error {
	if err := common.ValidatePassword(c.Args.Password); err != nil {
		return err
	}
	hash, err := common.HashPassword(c.Args.Password)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}

type migrateCommand struct {
	cfg func() *config.Config
}

func (c *migrateCommand) Execute(args []string) error {
	db, err := dbpostgres.NewPostgres(c.cfg())
	if err != nil {
		return err
	}
	version, dirty, err := dbpostgres.RunMigrations(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version %d (dirty=%t)\n", version, dirty)
	return nil
}

type tokenCommand struct {
	Principal string `long:"principal" default:"owner" description:"Principal to put in the token"`

	cfg func() *config.Config
}

func (c *tokenCommand) Execute(args []string) error {
	cfg := c.cfg()
	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	token, expiresAt, err := issuer.Issue(c.Principal)
	if err != nil {
		return err
	}
	return writeJSON(auth.LoginResult{Token: token, ExpiresAt: expiresAt})
}

type itemsCommand struct {
	Type   string   `long:"type" description:"Item type: text, image or quote"`
	Query  string   `short:"q" long:"query" description:"Full-text search"`
	Folder string   `long:"folder" description:"Folder id"`
	Tags   []string `short:"t" long:"tag" description:"Required tag (repeatable)"`
	Sort   string   `long:"sort" choice:"created_at_desc" choice:"created_at_asc" choice:"title_asc" description:"Sort mode"`
	Limit  int      `short:"n" long:"limit" description:"Maximum number of items"`

	cfg func() *config.Config
}

func (c *itemsCommand) query() catalog.Query {
	q := catalog.Query{
		Q:     c.Query,
		Sort:  catalog.SortMode(c.Sort),
		Limit: c.Limit,
	}
	if c.Type != "" {
		q.Type = catalog.Raw(c.Type)
	}
	if c.Folder != "" {
		q.Folder = catalog.Raw(c.Folder)
	}
	if len(c.Tags) > 0 {
		q.Tags = catalog.TagText(strings.Join(c.Tags, " "))
	}
	return q
}

func (c *itemsCommand) Execute(args []string) error {
	cfg := c.cfg()
	db, err := dbpostgres.NewPostgres(cfg)
	if err != nil {
		return err
	}

	svc := catalog.NewService(
		dbpostgres.NewItemRepository(db),
		dbpostgres.NewFolderRepository(db),
		media.NewResolverFromConfig(cfg),
		nil,
		nil,
		cfg,
	)
	result, err := svc.GetItems(context.Background(), c.query())
	if err != nil {
		return err
	}
	return writeJSON(result)
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
