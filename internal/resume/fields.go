package resume

// fieldRenames is the single source of truth for the naming contract between
// stored documents (internal) and request/response bodies (external).
var fieldRenames = []struct {
	internal string
	external string
}{
	{internal: "professionalSummary", external: "professional_summary"},
	{internal: "accentColor", external: "accent_color"},
	{internal: "projects", external: "project"},
}

// immutableKeys 不允许客户端或 AI 输出覆盖。
var immutableKeys = []string{
	"id", "_id",
	"user_id", "userId",
	"created_at", "createdAt",
	"updated_at", "updatedAt",
	"__v",
}

// ToExternal renames internal keys to their external names. Keys that are
// absent stay absent; the input map is not modified.
func ToExternal(fields map[string]any) map[string]any {
	out := copyFields(fields)
	for _, r := range fieldRenames {
		rename(out, r.internal, r.external)
	}
	return out
}

// ToInternal is the inverse of ToExternal.
func ToInternal(fields map[string]any) map[string]any {
	out := copyFields(fields)
	for _, r := range fieldRenames {
		rename(out, r.external, r.internal)
	}
	return out
}

func stripImmutable(fields map[string]any) map[string]any {
	out := copyFields(fields)
	for _, key := range immutableKeys {
		delete(out, key)
	}
	return out
}

func rename(fields map[string]any, from, to string) {
	value, ok := fields[from]
	if !ok {
		return
	}
	fields[to] = value
	delete(fields, from)
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
