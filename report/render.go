package report

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/modern-go/reflect2"

	"github.com/wnxd/memstate/memory"
)

const labelWidth = 25

type fieldData struct {
	label string
	pages bool
	field reflect2.StructField
}

var layouts sync.Map

type Renderer struct {
	pageSize uint64
}

func NewRenderer(pageSize uint64) *Renderer {
	return &Renderer{pageSize: pageSize}
}

func Field(label string, value any) string {
	return fmt.Sprintf("%*s%v", labelWidth, label+" ", value)
}

func (r *Renderer) PageSize() string {
	return Field("PageSize", r.pageSize)
}

func (r *Renderer) Case(name string) []string {
	return []string{"", "Case: " + name}
}

func (r *Renderer) Snapshot(snap *memory.Snapshot) []string {
	return r.fields(snap)
}

func (r *Renderer) fields(ptr any) []string {
	layout := layoutOf(ptr)
	base := reflect2.PtrOf(ptr)
	lines := make([]string, 0, len(layout))
	for _, f := range layout {
		v := f.field.Type().UnsafeIndirect(f.field.UnsafeGet(base))
		lines = append(lines, Field(f.label, r.value(v, f.pages)))
	}
	return lines
}

func (r *Renderer) value(v any, pages bool) any {
	switch v := v.(type) {
	case uintptr:
		return fmt.Sprintf("%016X", uint64(v))
	case uint64:
		if pages && r.pageSize != 0 {
			return v / r.pageSize
		}
		return v
	case fmt.Stringer:
		return v.String()
	}
	return v
}

func layoutOf(ptr any) []fieldData {
	typ := reflect2.Type2(reflect.TypeOf(ptr).Elem()).(reflect2.StructType)
	key := typ.RType()
	if v, ok := layouts.Load(key); ok {
		return v.([]fieldData)
	}
	layout := make([]fieldData, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, ok := field.Tag().Lookup("report")
		if !ok || tag == "-" {
			continue
		}
		label, opts, _ := strings.Cut(tag, ",")
		layout = append(layout, fieldData{
			label: label,
			pages: opts == "pages",
			field: field,
		})
	}
	layouts.Store(key, layout)
	return layout
}
