package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/typecache"
	"github.com/dhamidi/typecache/classfile"
)

// dirDomain is the CLI's real (non-test) Domain implementation: a loader
// domain backed by a directory of .class files laid out the usual way,
// name.with.dots mapping to name/with/dots.class under root.
//
// There is no JVM to reflect over from a standalone CLI, so Reflect here
// is a stand-in: it re-parses the same file and reports its metadata as if
// obtained by reflection. That keeps the fallback-path commands runnable
// end to end without pretending this process can reflect real running
// classes — a real agent's Domain.Reflect would call into java.lang.Class
// instead.
type dirDomain struct {
	root string
}

func newDirDomain(root string) *dirDomain {
	return &dirDomain{root: root}
}

func (d *dirDomain) path(name string) string {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator)) + ".class"
	return filepath.Join(d.root, rel)
}

func (d *dirDomain) ResourceBytes(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(d.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (d *dirDomain) FindLoaded(_ context.Context, name string) (*typecache.LoaderHandle, bool) {
	if _, err := os.Stat(d.path(name)); err != nil {
		return nil, false
	}
	return dirDomainHandle, true
}

func (d *dirDomain) ForceLoad(_ context.Context, name string) bool {
	_, err := os.Stat(d.path(name))
	return err == nil
}

func (d *dirDomain) Reflect(_ context.Context, name string) (typecache.ReflectedType, bool) {
	data, err := os.ReadFile(d.path(name))
	if err != nil {
		return typecache.ReflectedType{}, false
	}
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		return typecache.ReflectedType{}, false
	}

	rt := typecache.ReflectedType{
		Name:        classfile.InternalToSourceName(cf.ClassName()),
		IsInterface: cf.IsInterface(),
	}
	if super := cf.SuperClassName(); super != "" {
		rt.SuperName = classfile.InternalToSourceName(super)
	}
	for _, iface := range cf.InterfaceNames() {
		rt.InterfaceNames = append(rt.InterfaceNames, classfile.InternalToSourceName(iface))
	}
	return rt, true
}

// dirDomainHandle is the single LoaderHandle identity every dirDomain
// resolves names under; a standalone CLI run has exactly one loader
// domain, unlike a live agent juggling many.
var dirDomainHandle = &typecache.LoaderHandle{Label: "dir"}

type dirDomains struct {
	dom *dirDomain
}

func (d *dirDomains) Resolve(handle *typecache.LoaderHandle) typecache.Domain {
	if handle == dirDomainHandle || handle == nil {
		return d.dom
	}
	return nil
}

// dirWalk visits every .class file under root, calling visit with its path
// relative to root (separated with the OS path separator), in filepath.Walk's
// lexical traversal order, so output is deterministic for a fixed tree.
func dirWalk(root string, visit func(relPath string)) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".class" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		visit(rel)
		return nil
	})
}
