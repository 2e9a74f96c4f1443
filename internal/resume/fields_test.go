package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToExternalRenamesAndKeepsAbsentKeysAbsent(t *testing.T) {
	internal := map[string]any{
		"title":               "Backend",
		"professionalSummary": "Go developer",
		"projects":            []any{map[string]any{"name": "cli"}},
	}

	external := ToExternal(internal)

	assert.Equal(t, "Go developer", external["professional_summary"])
	assert.Equal(t, internal["projects"], external["project"])
	assert.NotContains(t, external, "professionalSummary")
	assert.NotContains(t, external, "projects")
	assert.NotContains(t, external, "accent_color")
	assert.NotContains(t, external, "accentColor")

	// 输入不被修改
	assert.Contains(t, internal, "professionalSummary")
}

func TestToInternalIsInverseOfToExternal(t *testing.T) {
	internal := map[string]any{
		"title":               "Backend",
		"accentColor":         "#3B82F6",
		"professionalSummary": "Go developer",
		"projects":            []any{},
		"skills":              []any{"go"},
	}

	assert.Equal(t, internal, ToInternal(ToExternal(internal)))
}

func TestStripImmutable(t *testing.T) {
	fields := map[string]any{
		"_id":       "forged",
		"id":        "forged",
		"userId":    7,
		"user_id":   7,
		"createdAt": "2020-01-01",
		"__v":       3,
		"title":     "kept",
	}

	assert.Equal(t, map[string]any{"title": "kept"}, stripImmutable(fields))
}

func TestPresentOmitsTimestampsAndUsesExternalNames(t *testing.T) {
	doc := Document{ID: "abc", UserID: 1, Title: "Resume", AccentColor: "#000"}
	doc.normalize()

	body, err := Present(doc)
	assert.NoError(t, err)

	assert.Equal(t, "abc", body["id"])
	assert.Equal(t, "#000", body["accent_color"])
	assert.Equal(t, []any{}, body["project"])
	for _, key := range []string{"created_at", "updated_at", "createdAt", "updatedAt", "accentColor", "projects"} {
		assert.NotContains(t, body, key)
	}
}

func TestMergeReplacesOnlyPresentKeys(t *testing.T) {
	doc := Document{Title: "Old", Skills: []string{"go"}, AccentColor: "#111"}

	err := doc.merge(map[string]any{
		"title":    "  New  ",
		"public":   true,
		"unknown":  "ignored",
		"projects": []any{map[string]any{"name": "p1", "type": "oss", "description": "d"}},
	})
	assert.NoError(t, err)

	assert.Equal(t, "New", doc.Title)
	assert.True(t, doc.Public)
	assert.Equal(t, []string{"go"}, doc.Skills)
	assert.Equal(t, "#111", doc.AccentColor)
	if assert.Len(t, doc.Projects, 1) {
		assert.Equal(t, "p1", doc.Projects[0].Name)
	}
	assert.NotNil(t, doc.Experience)
}

func TestMergeRejectsWrongShape(t *testing.T) {
	doc := Document{Title: "Old"}
	err := doc.merge(map[string]any{"skills": "not-a-list"})
	assert.Error(t, err)
	assert.Equal(t, "Old", doc.Title)
}

func TestLenientScalarsLeavesInputAndStructureAlone(t *testing.T) {
	input := map[string]any{
		"public":     "yes",
		"title":      12.0,
		"experience": map[string]any{"company": "Acme"},
		"skills":     "go, sql",
	}

	out := lenientScalars(input)

	assert.Equal(t, true, out["public"])
	assert.Equal(t, "12", out["title"])
	assert.Equal(t, input["experience"], out["experience"])
	assert.Equal(t, "go, sql", out["skills"])
	assert.Equal(t, "yes", input["public"])
}
