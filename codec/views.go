package codec

import (
	"github.com/wippyai/v8value/internal/tag"
	"github.com/wippyai/v8value/value"
)

var viewKinds = map[tag.ViewTag]value.ViewKind{
	tag.ViewInt8:         value.ViewInt8,
	tag.ViewUint8:        value.ViewUint8,
	tag.ViewUint8Clamped: value.ViewUint8Clamped,
	tag.ViewInt16:        value.ViewInt16,
	tag.ViewUint16:       value.ViewUint16,
	tag.ViewInt32:        value.ViewInt32,
	tag.ViewUint32:       value.ViewUint32,
	tag.ViewFloat32:      value.ViewFloat32,
	tag.ViewFloat64:      value.ViewFloat64,
	tag.ViewBigInt64:     value.ViewBigInt64,
	tag.ViewBigUint64:    value.ViewBigUint64,
	tag.ViewDataView:     value.ViewDataView,
}

var viewTags = func() map[value.ViewKind]tag.ViewTag {
	m := make(map[value.ViewKind]tag.ViewTag, len(viewKinds))
	for t, k := range viewKinds {
		m[k] = t
	}
	return m
}()

var errorPrototypes = map[tag.ErrorTag]value.ErrorName{
	tag.ErrorEvalPrototype:      value.EvalError,
	tag.ErrorRangePrototype:     value.RangeError,
	tag.ErrorReferencePrototype: value.ReferenceError,
	tag.ErrorSyntaxPrototype:    value.SyntaxError,
	tag.ErrorTypePrototype:      value.TypeError,
	tag.ErrorURIPrototype:       value.URIError,
}

var errorPrototypeTags = func() map[value.ErrorName]tag.ErrorTag {
	m := make(map[value.ErrorName]tag.ErrorTag, len(errorPrototypes))
	for t, n := range errorPrototypes {
		m[n] = t
	}
	return m
}()
