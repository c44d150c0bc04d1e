package typecache

import (
	"bytes"
	"testing"

	"github.com/dhamidi/typecache/classfile"
)

func TestNewParsedTypePreservesRawDescriptors(t *testing.T) {
	data := buildClassBytes("a/B", "a/A", []string{"a/I"}, []testMethod{
		{name: "process", descriptor: "(Ljava/lang/String;[I)Z"},
	})
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("classfile.Parse: %v", err)
	}

	pt := newParsedType(cf)
	if pt.Name != "a.B" {
		t.Errorf("Name = %q, want a.B", pt.Name)
	}
	if pt.SuperName != "a.A" {
		t.Errorf("SuperName = %q, want a.A", pt.SuperName)
	}
	if len(pt.InterfaceNames) != 1 || pt.InterfaceNames[0] != "a.I" {
		t.Errorf("InterfaceNames = %v, want [a.I]", pt.InterfaceNames)
	}
	if len(pt.Methods) != 1 {
		t.Fatalf("Methods = %v, want 1 entry", pt.Methods)
	}
	m := pt.Methods[0]
	if m.Name != "process" {
		t.Errorf("Methods[0].Name = %q, want process", m.Name)
	}
	wantParams := []string{"Ljava/lang/String;", "[I"}
	if len(m.ParamDescriptors) != len(wantParams) {
		t.Fatalf("ParamDescriptors = %v, want %v", m.ParamDescriptors, wantParams)
	}
	for i := range wantParams {
		if m.ParamDescriptors[i] != wantParams[i] {
			t.Errorf("ParamDescriptors[%d] = %q, want %q (raw, untranslated)", i, m.ParamDescriptors[i], wantParams[i])
		}
	}
	if m.ReturnDescriptor != "Z" {
		t.Errorf("ReturnDescriptor = %q, want Z (raw, untranslated)", m.ReturnDescriptor)
	}
}

// A class with no explicit "extends" still encodes an explicit constant-pool
// reference to java/lang/Object as its super class; newParsedType must elide
// it the same as the truly superless case (java.lang.Object's own class
// file, where the super-class index is absent).
func TestNewParsedTypeElidesObjectSuperName(t *testing.T) {
	data := buildClassBytes("a/Widget", "java/lang/Object", nil, nil)
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("classfile.Parse: %v", err)
	}

	pt := newParsedType(cf)
	if pt.SuperName != "" {
		t.Errorf("SuperName = %q, want empty (java.lang.Object elided)", pt.SuperName)
	}
}
