// Package shiftsummary builds the per-date, per-shift read model shown to
// managers: who was assigned, who submitted a report, which checklist tasks
// were done by whom, and which went unfinished.
package shiftsummary

import (
	"sort"
	"time"

	"katrina-one-backend/internal/domain"
)

// TaskCompletion attributes one completion record to the staff member who
// reported it.
type TaskCompletion struct {
	StaffName  string
	Completion domain.CompletionRecord
}

// AssignedUser is a server-role user whose published schedule overlaps the
// shift's canonical time frame on the target date. A user assigned through
// several overlapping schedule rows keeps every matching label.
type AssignedUser struct {
	UserID      int64
	Name        string
	ShiftLabels []string
}

// SectionStatus lists a checklist section's unfinished tasks.
type SectionStatus struct {
	Title               string
	TotalTasks          int
	UncompletedTasks    []domain.Task
	AllTasksUncompleted bool
}

type IssueNote struct {
	StaffName string
	Issues    string
}

// Summary is the read-only aggregate for one date+shift. Absent data yields
// empty collections, never errors.
type Summary struct {
	Date           time.Time
	ShiftKey       domain.ShiftKey
	AssignedUsers  []AssignedUser
	SubmittedUsers []string
	AbsentUsers    []string
	CompletedTasks map[string][]TaskCompletion
	Sections       []SectionStatus
	Notes          []IssueNote
}

// Build aggregates every submitted report for a date+shift against the shift
// template, the published schedule and the server-role roster.
func Build(tpl domain.ShiftTemplate, reports []domain.ShiftReport, schedule []domain.ScheduleShift, servers []domain.User, date time.Time) Summary {
	s := Summary{
		Date:           date,
		ShiftKey:       tpl.Key,
		AssignedUsers:  resolveAssignments(tpl, schedule, servers, date),
		CompletedTasks: mergeCompletions(reports),
	}

	s.SubmittedUsers = submittedNames(reports)
	submitted := make(map[string]struct{}, len(s.SubmittedUsers))
	for _, name := range s.SubmittedUsers {
		submitted[name] = struct{}{}
	}
	// Attendance is matched on display name, as report documents carry names
	// rather than user IDs.
	s.AbsentUsers = []string{}
	for _, u := range s.AssignedUsers {
		if _, ok := submitted[u.Name]; !ok {
			s.AbsentUsers = append(s.AbsentUsers, u.Name)
		}
	}

	s.Sections = sectionStatuses(tpl, s.CompletedTasks)

	s.Notes = []IssueNote{}
	for _, r := range reports {
		if r.Issues != "" {
			s.Notes = append(s.Notes, IssueNote{StaffName: r.StaffName, Issues: r.Issues})
		}
	}
	return s
}

// resolveAssignments finds, per server-role user, the schedule rows on the
// target date whose window overlaps the shift's canonical frame. Overlap is
// half-open at minute granularity: start < frameEnd && frameStart < end.
func resolveAssignments(tpl domain.ShiftTemplate, schedule []domain.ScheduleShift, servers []domain.User, date time.Time) []AssignedUser {
	y, m, d := date.Date()
	assigned := []AssignedUser{}
	for _, u := range servers {
		var labels []string
		for _, sh := range schedule {
			sy, sm, sd := sh.Date.Date()
			if sy != y || sm != m || sd != d || sh.UserID != u.ID {
				continue
			}
			if sh.Start < tpl.FrameEnd && tpl.FrameStart < sh.End {
				labels = append(labels, sh.Label)
			}
		}
		if len(labels) > 0 {
			assigned = append(assigned, AssignedUser{UserID: u.ID, Name: u.Name, ShiftLabels: labels})
		}
	}
	return assigned
}

func submittedNames(reports []domain.ShiftReport) []string {
	seen := make(map[string]struct{}, len(reports))
	names := []string{}
	for _, r := range reports {
		if _, ok := seen[r.StaffName]; ok {
			continue
		}
		seen[r.StaffName] = struct{}{}
		names = append(names, r.StaffName)
	}
	return names
}

// mergeCompletions flattens every report's completed-task map into a single
// multimap and sorts each task's completions by their "HH:mm" timestamp.
// Zero-padded wall-clock strings compare correctly lexicographically.
func mergeCompletions(reports []domain.ShiftReport) map[string][]TaskCompletion {
	merged := make(map[string][]TaskCompletion)
	for _, r := range reports {
		for taskID, records := range r.CompletedTasks {
			for _, c := range records {
				merged[taskID] = append(merged[taskID], TaskCompletion{StaffName: r.StaffName, Completion: c})
			}
		}
	}
	for taskID := range merged {
		list := merged[taskID]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Completion.Timestamp < list[j].Completion.Timestamp
		})
		merged[taskID] = list
	}
	return merged
}

// sectionStatuses walks the template's sections; a task counts as
// uncompleted when no completion exists for its ID. Report keys unknown to
// the template are ignored here rather than rejected.
func sectionStatuses(tpl domain.ShiftTemplate, merged map[string][]TaskCompletion) []SectionStatus {
	statuses := make([]SectionStatus, 0, len(tpl.Sections))
	for _, sec := range tpl.Sections {
		st := SectionStatus{Title: sec.Title, TotalTasks: len(sec.Tasks), UncompletedTasks: []domain.Task{}}
		for _, t := range sec.Tasks {
			if len(merged[t.ID]) == 0 {
				st.UncompletedTasks = append(st.UncompletedTasks, t)
			}
		}
		st.AllTasksUncompleted = st.TotalTasks > 0 && len(st.UncompletedTasks) == st.TotalTasks
		statuses = append(statuses, st)
	}
	return statuses
}
