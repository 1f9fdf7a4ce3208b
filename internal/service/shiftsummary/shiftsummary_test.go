package shiftsummary

import (
	"testing"
	"time"

	"katrina-one-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

func morningTemplate() domain.ShiftTemplate {
	return domain.ShiftTemplate{
		Key:        domain.ShiftMorning,
		Name:       "Ca sáng",
		FrameStart: 330, // 05:30
		FrameEnd:   720, // 12:00
		Sections: []domain.TaskSection{
			{
				Title: "Đầu ca",
				Tasks: []domain.Task{
					{ID: "sang-01", Text: "Mở cửa, bật đèn", Type: domain.TaskBoolean},
					{ID: "sang-02", Text: "Chụp ảnh quầy pha chế", Type: domain.TaskPhoto},
				},
			},
			{
				Title: "Cuối ca",
				Tasks: []domain.Task{
					{ID: "sang-03", Text: "Bàn giao ca", Type: domain.TaskOpinion},
				},
			},
		},
	}
}

func schedRow(userID int64, name string, start, end int) domain.ScheduleShift {
	return domain.ScheduleShift{
		UserID:   userID,
		UserName: name,
		Date:     testDate,
		Label:    "Ca sáng 6h-12h",
		Start:    start,
		End:      end,
	}
}

func TestBuildPartitionsAttendance(t *testing.T) {
	tpl := morningTemplate()
	servers := []domain.User{
		{ID: 1, Name: "Lan"},
		{ID: 2, Name: "Minh"},
		{ID: 3, Name: "Huy"},
	}
	schedule := []domain.ScheduleShift{
		schedRow(1, "Lan", 360, 720),
		schedRow(2, "Minh", 360, 720),
		// Huy works the evening only; no overlap with the morning frame.
		schedRow(3, "Huy", 1020, 1380),
	}
	reports := []domain.ShiftReport{
		{StaffName: "Lan", CompletedTasks: map[string][]domain.CompletionRecord{}},
	}

	s := Build(tpl, reports, schedule, servers, testDate)

	require.Len(t, s.AssignedUsers, 2)
	assert.Equal(t, []string{"Lan"}, s.SubmittedUsers)
	assert.Equal(t, []string{"Minh"}, s.AbsentUsers)
}

func TestBuildOverlapEdges(t *testing.T) {
	tpl := morningTemplate()
	servers := []domain.User{{ID: 1, Name: "Lan"}, {ID: 2, Name: "Minh"}}

	// Ends exactly at frame start: no overlap under the half-open rule.
	// Starts exactly at frame end: likewise.
	schedule := []domain.ScheduleShift{
		schedRow(1, "Lan", 120, 330),
		schedRow(2, "Minh", 720, 900),
	}
	s := Build(tpl, nil, schedule, servers, testDate)
	assert.Empty(t, s.AssignedUsers)

	// One minute of overlap on each edge is enough.
	schedule = []domain.ScheduleShift{
		schedRow(1, "Lan", 120, 331),
		schedRow(2, "Minh", 719, 900),
	}
	s = Build(tpl, nil, schedule, servers, testDate)
	assert.Len(t, s.AssignedUsers, 2)
}

func TestBuildIgnoresOtherDates(t *testing.T) {
	tpl := morningTemplate()
	servers := []domain.User{{ID: 1, Name: "Lan"}}
	row := schedRow(1, "Lan", 360, 720)
	row.Date = testDate.AddDate(0, 0, 1)

	s := Build(tpl, nil, []domain.ScheduleShift{row}, servers, testDate)
	assert.Empty(t, s.AssignedUsers)
}

func TestBuildKeepsEveryMatchingLabel(t *testing.T) {
	tpl := morningTemplate()
	servers := []domain.User{{ID: 1, Name: "Lan"}}
	early := schedRow(1, "Lan", 330, 540)
	early.Label = "Ca sáng sớm"
	late := schedRow(1, "Lan", 540, 720)
	late.Label = "Ca sáng muộn"

	s := Build(tpl, nil, []domain.ScheduleShift{early, late}, servers, testDate)
	require.Len(t, s.AssignedUsers, 1)
	assert.Equal(t, []string{"Ca sáng sớm", "Ca sáng muộn"}, s.AssignedUsers[0].ShiftLabels)
}

func TestMergeCompletionsSortsByClock(t *testing.T) {
	reports := []domain.ShiftReport{
		{
			StaffName: "Minh",
			CompletedTasks: map[string][]domain.CompletionRecord{
				"sang-01": {{Timestamp: "10:15"}},
			},
		},
		{
			StaffName: "Lan",
			CompletedTasks: map[string][]domain.CompletionRecord{
				"sang-01": {{Timestamp: "06:05"}, {Timestamp: "09:30"}},
			},
		},
	}

	merged := mergeCompletions(reports)
	require.Len(t, merged["sang-01"], 3)
	assert.Equal(t, "06:05", merged["sang-01"][0].Completion.Timestamp)
	assert.Equal(t, "09:30", merged["sang-01"][1].Completion.Timestamp)
	assert.Equal(t, "10:15", merged["sang-01"][2].Completion.Timestamp)
	assert.Equal(t, "Minh", merged["sang-01"][2].StaffName)
}

func TestSectionStatusConservation(t *testing.T) {
	tpl := morningTemplate()
	reports := []domain.ShiftReport{
		{
			StaffName: "Lan",
			CompletedTasks: map[string][]domain.CompletionRecord{
				"sang-01": {{Timestamp: "06:00"}},
			},
		},
	}

	s := Build(tpl, reports, nil, nil, testDate)
	require.Len(t, s.Sections, 2)

	// Every template task lands in exactly one bucket.
	first := s.Sections[0]
	assert.Equal(t, 2, first.TotalTasks)
	require.Len(t, first.UncompletedTasks, 1)
	assert.Equal(t, "sang-02", first.UncompletedTasks[0].ID)
	assert.False(t, first.AllTasksUncompleted)

	second := s.Sections[1]
	assert.Equal(t, 1, second.TotalTasks)
	assert.Len(t, second.UncompletedTasks, 1)
	assert.True(t, second.AllTasksUncompleted)
}

func TestSectionSingleUnfinishedTask(t *testing.T) {
	tpl := domain.ShiftTemplate{
		Key: domain.ShiftEvening,
		Sections: []domain.TaskSection{
			{
				Title: "Cuối ca",
				Tasks: []domain.Task{
					{ID: "toi-01"},
					{ID: "toi-02"},
					{ID: "toi-03"},
				},
			},
		},
	}
	reports := []domain.ShiftReport{
		{
			StaffName: "Lan",
			CompletedTasks: map[string][]domain.CompletionRecord{
				"toi-01": {{Timestamp: "21:00"}},
				"toi-03": {{Timestamp: "21:40"}},
			},
		},
	}

	s := Build(tpl, reports, nil, nil, testDate)
	require.Len(t, s.Sections, 1)
	sec := s.Sections[0]
	require.Len(t, sec.UncompletedTasks, 1)
	assert.Equal(t, "toi-02", sec.UncompletedTasks[0].ID)
	assert.False(t, sec.AllTasksUncompleted)
}

func TestBuildUnknownTaskKeysIgnored(t *testing.T) {
	tpl := morningTemplate()
	reports := []domain.ShiftReport{
		{
			StaffName: "Lan",
			CompletedTasks: map[string][]domain.CompletionRecord{
				"khong-ton-tai": {{Timestamp: "07:00"}},
			},
		},
	}

	s := Build(tpl, reports, nil, nil, testDate)
	for _, sec := range s.Sections {
		assert.Equal(t, sec.TotalTasks, len(sec.UncompletedTasks))
	}
	assert.Contains(t, s.CompletedTasks, "khong-ton-tai")
}

func TestBuildEmptyInputsYieldEmptyCollections(t *testing.T) {
	s := Build(morningTemplate(), nil, nil, nil, testDate)
	assert.NotNil(t, s.AbsentUsers)
	assert.NotNil(t, s.Notes)
	assert.Empty(t, s.SubmittedUsers)
	assert.Empty(t, s.CompletedTasks)
}

func TestBuildCollectsIssueNotes(t *testing.T) {
	reports := []domain.ShiftReport{
		{StaffName: "Lan", Issues: "Máy pha cà phê rò nước"},
		{StaffName: "Minh"},
	}
	s := Build(morningTemplate(), reports, nil, nil, testDate)
	require.Len(t, s.Notes, 1)
	assert.Equal(t, "Lan", s.Notes[0].StaffName)
}
