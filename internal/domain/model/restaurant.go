// Package model contains domain models passed between layers.
package model

// Restaurant is the stored record and, through its json tags, its external
// representation.
type Restaurant struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Address string `json:"address" db:"address"`
	Phone   string `json:"phone" db:"phone"`
	Cuisine string `json:"cuisine" db:"cuisine"`
}

// Fields is a validated restaurant payload. A nil pointer means the field was
// not supplied by the client.
type Fields struct {
	Name    *string
	Address *string
	Phone   *string
	Cuisine *string
}

// Empty reports whether no field was supplied.
func (f Fields) Empty() bool {
	return f.Name == nil && f.Address == nil && f.Phone == nil && f.Cuisine == nil
}

// Apply merges f into r. With partial set only supplied fields change;
// otherwise r is fully replaced and omitted fields fall back to "".
// The identifier is never touched.
func (f Fields) Apply(r *Restaurant, partial bool) {
	r.Name = pick(f.Name, r.Name, partial)
	r.Address = pick(f.Address, r.Address, partial)
	r.Phone = pick(f.Phone, r.Phone, partial)
	r.Cuisine = pick(f.Cuisine, r.Cuisine, partial)
}

// Columns returns the supplied fields keyed by column name, in a stable order.
// In full mode every column is present.
func (f Fields) Columns(partial bool) ([]string, []any) {
	var cols []string
	var vals []any
	add := func(col string, v *string) {
		switch {
		case v != nil:
			cols = append(cols, col)
			vals = append(vals, *v)
		case !partial:
			cols = append(cols, col)
			vals = append(vals, "")
		}
	}
	add("name", f.Name)
	add("address", f.Address)
	add("phone", f.Phone)
	add("cuisine", f.Cuisine)
	return cols, vals
}

func pick(v *string, current string, partial bool) string {
	if v != nil {
		return *v
	}
	if partial {
		return current
	}
	return ""
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
