package result

import (
	"context"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// RecalculatePositions recomputes "N of M" positions for every subject
// cohort in the session+term; classLevel narrows the pass to one class
// when non-empty. A cohort is the set of complete results sharing
// subject+session+term+class. This is a full recompute, not incremental:
// it is an explicit, infrequent administrative action and must stay
// correct under ties and late-arriving rows.
func (svc *Service) RecalculatePositions(ctx context.Context, sessionID, termID, classLevel string) (RankingReport, error) {
	var report RankingReport

	if _, err := svc.dir.GetSessionByID(ctx, sessionID); err != nil {
		return report, pkgerrors.Wrapf(err, "resolving session %q", sessionID)
	}
	if _, err := svc.dir.GetTermByID(ctx, termID); err != nil {
		return report, pkgerrors.Wrapf(err, "resolving term %q", termID)
	}

	students, err := svc.dir.QueryActiveStudents(ctx, sessionID, classLevel)
	if err != nil {
		return report, pkgerrors.Wrap(err, "querying students")
	}
	if len(students) == 0 {
		return report, nil
	}

	classOf := make(map[string]string, len(students))
	studentIDs := make([]string, 0, len(students))
	for _, std := range students {
		classOf[std.ID] = std.ClassLevel
		studentIDs = append(studentIDs, std.ID)
	}

	rows, err := svc.repo.QueryResults(ctx, sessionID, termID, studentIDs)
	if err != nil {
		return report, pkgerrors.Wrap(err, "querying results")
	}

	// cohort = class + subject; incomplete rows are not ranked
	type cohortKey struct{ class, subjectID string }
	cohorts := make(map[cohortKey][]ExamResult)
	for _, res := range rows {
		if !res.IsComplete() {
			continue
		}
		ck := cohortKey{class: classOf[res.StudentID], subjectID: res.SubjectID}
		cohorts[ck] = append(cohorts[ck], res)
	}

	updates := make([]PositionUpdate, 0, len(rows))
	for _, cohort := range cohorts {
		updates = append(updates, rankCohort(cohort)...)
	}
	if err := svc.repo.UpdatePositions(ctx, updates); err != nil {
		return report, pkgerrors.Wrap(err, "updating positions")
	}

	report.SubjectsProcessed = len(cohorts)
	if svc.log != nil {
		svc.log.Info("positions recalculated",
			map[string]interface{}{
				"session":  sessionID,
				"term":     termID,
				"class":    classLevel,
				"subjects": report.SubjectsProcessed,
				"rows":     len(updates),
			},
		)
	}
	return report, nil
}

// rankCohort assigns standard competition ranks: tied totals share a
// position and the next distinct total skips ahead by the tie-group size
// (90, 90, 85 ranks as 1, 1, 3). TotalStudents is the ranked-row count,
// not the enrolled-student count.
func rankCohort(cohort []ExamResult) []PositionUpdate {
	sort.Slice(cohort, func(i, j int) bool {
		if cohort[i].TotalScore.Float64 != cohort[j].TotalScore.Float64 {
			return cohort[i].TotalScore.Float64 > cohort[j].TotalScore.Float64
		}
		return cohort[i].StudentID < cohort[j].StudentID // deterministic order
	})

	total := len(cohort)
	updates := make([]PositionUpdate, 0, total)
	position := 0
	var prev null.Float64
	for i, res := range cohort {
		if !prev.Valid || res.TotalScore.Float64 != prev.Float64 {
			position = i + 1
		}
		prev = res.TotalScore
		updates = append(updates, PositionUpdate{
			ResultID:      res.ID,
			Position:      position,
			TotalStudents: total,
		})
	}
	return updates
}
