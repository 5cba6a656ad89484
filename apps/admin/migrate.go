package main

import (
	"github.com/pressly/goose/v3"

	appfs "github.com/kymoh/moviematrix/fs"
	"github.com/kymoh/moviematrix/storage/database"
)

var gooseRunFunc = goose.Run // mockable

// initDB creates the SQLite file (a side effect of opening it) and brings
// the schema up to date.
func (cli *commandLine) initDB() error {
	return database.Migrate(cli.db)
}

func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db.DB, "migrations", arguments...)
}
