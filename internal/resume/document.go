package resume

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"resumebuilder/internal/database"
)

// Document 是简历在服务内部的表示，JSON 字段名即内部命名约定。
// 对外输出前必须经过 Present 转换为外部命名。
type Document struct {
	ID                  string                `json:"id"`
	UserID              uint                  `json:"user_id"`
	Title               string                `json:"title"`
	Public              bool                  `json:"public"`
	Template            string                `json:"template"`
	AccentColor         string                `json:"accentColor"`
	ProfessionalSummary string                `json:"professionalSummary"`
	Skills              []string              `json:"skills"`
	PersonalInfo        database.PersonalInfo `json:"personal_info"`
	Experience          []database.Experience `json:"experience"`
	Projects            []database.Project    `json:"projects"`
	Education           []database.Education  `json:"education"`
}

// Present 生成对外响应体：内部命名 -> 外部命名，系统字段不输出。
func Present(doc Document) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal resume: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode resume: %w", err)
	}
	return ToExternal(fields), nil
}

// merge copies every recognised key present in fields (internal naming) onto d.
// Present keys replace the whole field; absent keys leave d untouched.
func (d *Document) merge(fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}
	var src Document
	if err := json.Unmarshal(raw, &src); err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}

	for key := range fields {
		switch key {
		case "title":
			d.Title = strings.TrimSpace(src.Title)
		case "public":
			d.Public = src.Public
		case "template":
			d.Template = src.Template
		case "accentColor":
			d.AccentColor = src.AccentColor
		case "professionalSummary":
			d.ProfessionalSummary = src.ProfessionalSummary
		case "skills":
			d.Skills = src.Skills
		case "personal_info":
			d.PersonalInfo = src.PersonalInfo
		case "experience":
			d.Experience = src.Experience
		case "projects":
			d.Projects = src.Projects
		case "education":
			d.Education = src.Education
		}
	}
	d.normalize()
	return nil
}

func (d *Document) normalize() {
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Experience == nil {
		d.Experience = []database.Experience{}
	}
	if d.Projects == nil {
		d.Projects = []database.Project{}
	}
	if d.Education == nil {
		d.Education = []database.Education{}
	}
}

func toDocument(row database.Resume) Document {
	doc := Document{
		ID:                  row.ID,
		UserID:              row.UserID,
		Title:               row.Title,
		Public:              row.Public,
		Template:            row.Template,
		AccentColor:         row.AccentColor,
		ProfessionalSummary: row.ProfessionalSummary,
		Skills:              []string(row.Skills),
		PersonalInfo:        row.PersonalInfo.Data(),
		Experience:          []database.Experience(row.Experience),
		Projects:            []database.Project(row.Projects),
		Education:           []database.Education(row.Education),
	}
	doc.normalize()
	return doc
}

func toRow(doc Document) database.Resume {
	doc.normalize()
	return database.Resume{
		ID:                  doc.ID,
		UserID:              doc.UserID,
		Title:               doc.Title,
		Public:              doc.Public,
		Template:            doc.Template,
		AccentColor:         doc.AccentColor,
		ProfessionalSummary: doc.ProfessionalSummary,
		Skills:              datatypes.JSONSlice[string](doc.Skills),
		PersonalInfo:        datatypes.NewJSONType(doc.PersonalInfo),
		Experience:          datatypes.JSONSlice[database.Experience](doc.Experience),
		Projects:            datatypes.JSONSlice[database.Project](doc.Projects),
		Education:           datatypes.JSONSlice[database.Education](doc.Education),
	}
}

// columns returns the mutable columns of row for a full-document update.
func columns(row database.Resume) map[string]any {
	return map[string]any{
		"title":                row.Title,
		"public":               row.Public,
		"template":             row.Template,
		"accent_color":         row.AccentColor,
		"professional_summary": row.ProfessionalSummary,
		"skills":               row.Skills,
		"personal_info":        row.PersonalInfo,
		"experience":           row.Experience,
		"projects":             row.Projects,
		"education":            row.Education,
	}
}
