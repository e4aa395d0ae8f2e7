package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/moh-Adedamola/molek-records/core/result"
)

var openFunc = os.Open // mockable

func (cli *commandLine) importScores(ctx context.Context, kind, path, sessionID, termID string) error {
	f, err := openFunc(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var report result.BatchReport
	switch kind {
	case "importca":
		report, err = cli.resultSvc.ImportCATheory(ctx, f, sessionID, termID)
	case "importexam":
		report, err = cli.resultSvc.ImportExam(ctx, f, sessionID, termID)
	}
	if err != nil {
		return err
	}
	cli.printBatchReport(report)
	return nil
}

func (cli *commandLine) printBatchReport(report result.BatchReport) {
	fmt.Fprintf(cli.out, "%s %d created, %d updated, %d rejected\n",
		color.GreenString("Batch complete:"), report.Created, report.Updated, len(report.Errors))

	if len(report.Errors) == 0 {
		return
	}
	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Row", "Admission No", "Error"})
	for _, rowErr := range report.Errors {
		table.Append([]string{
			fmt.Sprintf("%d", rowErr.Row),
			rowErr.AdmissionNumber,
			rowErr.Error,
		})
	}
	table.Render()
}

func (cli *commandLine) recalcPositions(ctx context.Context, sessionID, termID, classLevel string) error {
	report, err := cli.resultSvc.RecalculatePositions(ctx, sessionID, termID, classLevel)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %d subject cohort(s) ranked\n",
		color.GreenString("Positions recalculated:"), report.SubjectsProcessed)
	return nil
}
