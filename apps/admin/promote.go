package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/moh-Adedamola/molek-records/core/promotion"
)

var readFileFunc = os.ReadFile // mockable

func (cli *commandLine) evaluatePromotion(ctx context.Context, classLevel, sessionID, rulesPath string) error {
	data, err := readFileFunc(rulesPath)
	if err != nil {
		return err
	}
	var rules promotion.RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return err
	}

	decisions, err := cli.promoSvc.Evaluate(ctx, classLevel, sessionID, rules)
	if err != nil {
		return err
	}
	if rules.Mode == promotion.ModeRecommend {
		fmt.Fprintln(cli.out, color.YellowString("Advisory run (mode=recommend): results are recommendations only."))
	}
	cli.printDecisions(decisions)
	return nil
}

func (cli *commandLine) printDecisions(decisions []promotion.Decision) {
	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Admission No", "Student", "Average", "Passed", "Status", "Carryovers", "Remarks"})
	for _, dec := range decisions {
		table.Append([]string{
			dec.AdmissionNumber,
			dec.StudentName,
			fmt.Sprintf("%.1f", dec.CumulativeAverage),
			fmt.Sprintf("%d/%d", dec.SubjectsPassed, dec.SubjectsRequired),
			colorStatus(dec.Status),
			strings.Join(dec.CarryoverSubjects, ", "),
			dec.Remarks,
		})
	}
	table.Render()
}

func colorStatus(status promotion.Status) string {
	switch status {
	case promotion.StatusPromoted:
		return color.GreenString(string(status))
	case promotion.StatusPromotedWithCarryover:
		return color.YellowString(string(status))
	case promotion.StatusNotPromoted:
		return color.RedString(string(status))
	default:
		return string(status)
	}
}

func (cli *commandLine) applyPromotion(ctx context.Context, req promotion.ApplyRequest) (err error) {
	report, err := cli.promoSvc.Apply(ctx, req)
	fmt.Fprintf(cli.out, "%d promoted, %d graduated\n", report.Promoted, report.Graduated)
	if len(report.FailedIDs) > 0 {
		fmt.Fprintf(cli.out, "%s %s\n", color.RedString("Not applied:"), strings.Join(report.FailedIDs, ", "))
	}
	return err
}
