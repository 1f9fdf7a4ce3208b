package repository

import (
	"context"
	"encoding/json"

	"katrina-one-backend/internal/domain"
)

// SeedDefaults installs the three stock shift templates with their canonical
// time frames (minutes from midnight) and starter checklists. Idempotent:
// existing templates are left untouched.
func (r TemplateRepository) SeedDefaults(ctx context.Context) error {
	defaults := []domain.ShiftTemplate{
		{
			Key: domain.ShiftMorning, Name: "Ca sáng", FrameStart: 5*60 + 30, FrameEnd: 12 * 60,
			Sections: []domain.TaskSection{
				{Title: "Đầu ca", Tasks: []domain.Task{
					{ID: "sang-01", Text: "Mở cửa, bật đèn và máy lạnh khu vực khách", Type: domain.TaskPhoto, Area: "Sảnh"},
					{ID: "sang-02", Text: "Lau toàn bộ mặt bàn trước giờ mở bán", Type: domain.TaskPhoto, Area: "Sảnh"},
					{ID: "sang-03", Text: "Kiểm tra tủ mát đủ nguyên liệu pha chế", Type: domain.TaskBoolean, Area: "Quầy bar"},
				}},
				{Title: "Trong ca", Tasks: []domain.Task{
					{ID: "sang-04", Text: "Dọn bàn ngay khi khách rời đi", Type: domain.TaskBoolean},
					{ID: "sang-05", Text: "Kiểm tra nhà vệ sinh mỗi 2 tiếng", Type: domain.TaskPhoto, Area: "WC"},
					{ID: "sang-06", Text: "Ghi nhận tình trạng khách và góp ý", Type: domain.TaskOpinion},
				}},
				{Title: "Cuối ca", Tasks: []domain.Task{
					{ID: "sang-07", Text: "Bàn giao quầy cho ca chiều", Type: domain.TaskBoolean, Area: "Quầy bar"},
					{ID: "sang-08", Text: "Chụp ảnh khu vực sảnh sau khi dọn", Type: domain.TaskPhoto, Area: "Sảnh"},
				}},
			},
		},
		{
			Key: domain.ShiftAfternoon, Name: "Ca chiều", FrameStart: 11*60 + 30, FrameEnd: 17*60 + 30,
			Sections: []domain.TaskSection{
				{Title: "Đầu ca", Tasks: []domain.Task{
					{ID: "chieu-01", Text: "Nhận bàn giao từ ca sáng", Type: domain.TaskBoolean},
					{ID: "chieu-02", Text: "Kiểm tra khu vực khách ngồi ngoài trời", Type: domain.TaskPhoto, Area: "Sân"},
				}},
				{Title: "Trong ca", Tasks: []domain.Task{
					{ID: "chieu-03", Text: "Châm đá và nguyên liệu quầy bar", Type: domain.TaskBoolean, Area: "Quầy bar"},
					{ID: "chieu-04", Text: "Kiểm tra nhà vệ sinh mỗi 2 tiếng", Type: domain.TaskPhoto, Area: "WC"},
					{ID: "chieu-05", Text: "Ghi nhận tình trạng khách và góp ý", Type: domain.TaskOpinion},
				}},
				{Title: "Cuối ca", Tasks: []domain.Task{
					{ID: "chieu-06", Text: "Bàn giao quầy cho ca tối", Type: domain.TaskBoolean, Area: "Quầy bar"},
				}},
			},
		},
		{
			Key: domain.ShiftEvening, Name: "Ca tối", FrameStart: 17 * 60, FrameEnd: 23 * 60,
			Sections: []domain.TaskSection{
				{Title: "Đầu ca", Tasks: []domain.Task{
					{ID: "toi-01", Text: "Nhận bàn giao từ ca chiều", Type: domain.TaskBoolean},
					{ID: "toi-02", Text: "Bật đèn trang trí khu vực ngoài trời", Type: domain.TaskBoolean, Area: "Sân"},
				}},
				{Title: "Trong ca", Tasks: []domain.Task{
					{ID: "toi-03", Text: "Kiểm tra nhà vệ sinh mỗi 2 tiếng", Type: domain.TaskPhoto, Area: "WC"},
					{ID: "toi-04", Text: "Ghi nhận tình trạng khách và góp ý", Type: domain.TaskOpinion},
				}},
				{Title: "Cuối ca", Tasks: []domain.Task{
					{ID: "toi-05", Text: "Dọn toàn bộ bàn ghế, úp ghế lên bàn", Type: domain.TaskPhoto, Area: "Sảnh"},
					{ID: "toi-06", Text: "Tắt đèn, máy lạnh, khóa cửa và chụp ảnh", Type: domain.TaskPhoto},
				}},
			},
		},
	}

	for _, tpl := range defaults {
		sections, err := json.Marshal(tpl.Sections)
		if err != nil {
			return err
		}
		// Idempotent: shift_templates.shift_key is the primary key.
		_, err = r.DB.Pool.Exec(ctx, `
			INSERT INTO shift_templates (shift_key, name, frame_start, frame_end, sections, updated_at)
			VALUES ($1,$2,$3,$4,$5, now())
			ON CONFLICT (shift_key) DO NOTHING
		`, string(tpl.Key), tpl.Name, tpl.FrameStart, tpl.FrameEnd, sections)
		if err != nil {
			return err
		}
	}
	return nil
}
