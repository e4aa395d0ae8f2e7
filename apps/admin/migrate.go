package main

import (
	"github.com/trezcool/goose"

	appfs "github.com/moh-Adedamola/molek-records/fs"
	"github.com/moh-Adedamola/molek-records/storage/database"
)

var (
	gooseRunFunc  = goose.RunFS      // mockable
	migrateUpFunc = database.Migrate // mockable
)

func (cli *commandLine) migrate(args []string) error {
	// plain "up" is the bootstrap path and goes through the shared
	// migrator; everything else passes straight through to goose
	if args[0] == "up" && len(args) == 1 {
		return migrateUpFunc(cli.db.DB)
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db.DB, appfs.FS, "migrations", arguments...)
}
