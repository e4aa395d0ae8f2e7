package main

import (
	"log"
	"os"

	"github.com/moh-Adedamola/molek-records/core"
	"github.com/moh-Adedamola/molek-records/core/promotion"
	"github.com/moh-Adedamola/molek-records/core/result"
	logsvc "github.com/moh-Adedamola/molek-records/services/logger"
	"github.com/moh-Adedamola/molek-records/storage/database"
	sqlxrepos "github.com/moh-Adedamola/molek-records/storage/database/sqlx"
)

var std *log.Logger

func main() {
	defer os.Exit(0)

	std = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	resultRepo := sqlxrepos.NewResultRepository(db)
	schoolRepo := sqlxrepos.NewSchoolRepository(db)

	// start CLI
	cli := commandLine{
		db:        db,
		resultSvc: result.NewService(resultRepo, schoolRepo, logger),
		promoSvc:  promotion.NewService(resultRepo, schoolRepo, logger),
		out:       os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		std.Fatal(err)
	}
}
