package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/moh-Adedamola/molek-records/core/promotion"
	"github.com/moh-Adedamola/molek-records/core/result"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sqlx.DB
	resultSvc *result.Service
	promoSvc  *promotion.Service
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run database migrations (up, down, status, ...)")
	fmt.Println("  importca -file FILE -session SESSION -term TERM - import a CA/Theory score batch")
	fmt.Println("  importexam -file FILE -session SESSION -term TERM - import an Exam score batch")
	fmt.Println("  recalcpositions -session SESSION -term TERM [-class CLASS] - recompute subject positions")
	fmt.Println("  evaluatepromotion -class CLASS -session SESSION -rules FILE - evaluate a promotion rule set")
	fmt.Println("  applypromotion -from CLASS -to CLASS -session SESSION -students ID[,ID...] - commit a promotion")
	fmt.Println("  deleteresult -student ID -subject ID -session ID -term ID - delete one result row")
}

func (cli *commandLine) run(args []string) error {
	if cli.out == nil {
		cli.out = os.Stdout
	}
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "importca", "importexam":
		cmd := flag.NewFlagSet(args[1], flag.ExitOnError)
		file := cmd.String("file", "", "Path to the CSV batch file.")
		session := cmd.String("session", "", "Target session ID.")
		term := cmd.String("term", "", "Target term ID.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *file == "" || *session == "" || *term == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.importScores(ctx, args[1], *file, *session, *term)

	case "recalcpositions":
		cmd := flag.NewFlagSet("recalcpositions", flag.ExitOnError)
		session := cmd.String("session", "", "Target session ID.")
		term := cmd.String("term", "", "Target term ID.")
		class := cmd.String("class", "", "Optional class level; all classes when omitted.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *session == "" || *term == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.recalcPositions(ctx, *session, *term, *class)

	case "evaluatepromotion":
		cmd := flag.NewFlagSet("evaluatepromotion", flag.ExitOnError)
		class := cmd.String("class", "", "Class level to evaluate.")
		session := cmd.String("session", "", "Target session ID.")
		rules := cmd.String("rules", "", "Path to a JSON promotion rule set.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *class == "" || *session == "" || *rules == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.evaluatePromotion(ctx, *class, *session, *rules)

	case "applypromotion":
		cmd := flag.NewFlagSet("applypromotion", flag.ExitOnError)
		from := cmd.String("from", "", "Class level students are promoted from.")
		to := cmd.String("to", "", "Class level students are promoted into.")
		session := cmd.String("session", "", "Enrollment session ID for the promoted students.")
		students := cmd.String("students", "", "Comma-separated student IDs.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *from == "" || *to == "" || *session == "" || *students == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.applyPromotion(ctx, promotion.ApplyRequest{
			StudentIDs: strings.Split(*students, ","),
			FromClass:  *from,
			ToClass:    *to,
			SessionID:  *session,
		})

	case "deleteresult":
		cmd := flag.NewFlagSet("deleteresult", flag.ExitOnError)
		student := cmd.String("student", "", "Student ID.")
		subject := cmd.String("subject", "", "Subject ID.")
		session := cmd.String("session", "", "Session ID.")
		term := cmd.String("term", "", "Term ID.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *student == "" || *subject == "" || *session == "" || *term == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.resultSvc.Delete(ctx, result.ResultKey{
			StudentID: *student,
			SubjectID: *subject,
			SessionID: *session,
			TermID:    *term,
		})

	default:
		cli.printUsage()
		return errHelp
	}
}
