package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadError describes a schema file problem with its CUE position when
// one is available.
type LoadError struct {
	Class   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: class %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Class, e.Message)
	}
	if e.Class != "" {
		return fmt.Sprintf("class %s: %s", e.Class, e.Message)
	}
	return e.Message
}

// Load reads every .cue file in dir and compiles the declared classes.
func Load(dir string) (*Set, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Message: fmt.Sprintf("schema directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("error accessing schema directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return FromValue(value)
}

// FromValue compiles classes out of an already-built CUE value. The value
// must carry the top-level "class" struct.
func FromValue(value cue.Value) (*Set, error) {
	classesVal := value.LookupPath(cue.ParsePath("class"))
	if !classesVal.Exists() {
		return nil, &LoadError{Message: "no top-level class struct found"}
	}

	iter, err := classesVal.Fields()
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("iterating classes: %v", err)}
	}

	var classes []*Class
	for iter.Next() {
		c, err := compileClass(iter.Value(), iter.Selector().String())
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	if len(classes) == 0 {
		return nil, &LoadError{Message: "schema declares no classes"}
	}
	return NewSet(classes)
}

// compileClass parses one class struct.
func compileClass(v cue.Value, name string) (*Class, error) {
	primitive := false
	if pv := v.LookupPath(cue.ParsePath("primitive")); pv.Exists() {
		b, err := pv.Bool()
		if err != nil {
			return nil, &LoadError{Class: name, Message: "primitive must be a boolean", Pos: pv.Pos()}
		}
		primitive = b
	}
	if primitive {
		return compilePrimitiveClass(v, name)
	}
	return compileRecordClass(v, name)
}

func compilePrimitiveClass(v cue.Value, name string) (*Class, error) {
	tv := v.LookupPath(cue.ParsePath("type"))
	if !tv.Exists() {
		return nil, &LoadError{Class: name, Message: "primitive class requires a type", Pos: v.Pos()}
	}
	typeName, err := tv.String()
	if err != nil {
		return nil, &LoadError{Class: name, Message: "type must be a string", Pos: tv.Pos()}
	}
	if !ValidType(Type(typeName)) {
		return nil, &LoadError{Class: name, Message: fmt.Sprintf("unknown base type %q", typeName), Pos: tv.Pos()}
	}

	optional := false
	if ov := v.LookupPath(cue.ParsePath("optional")); ov.Exists() {
		optional, err = ov.Bool()
		if err != nil {
			return nil, &LoadError{Class: name, Message: "optional must be a boolean", Pos: ov.Pos()}
		}
	}

	return &Class{
		Name:      name,
		Primitive: true,
		Properties: []Property{
			{Name: PrimitiveValueColumn, Type: Type(typeName), Optional: optional},
		},
	}, nil
}

func compileRecordClass(v cue.Value, name string) (*Class, error) {
	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return nil, &LoadError{Class: name, Message: "record class requires properties", Pos: v.Pos()}
	}

	iter, err := propsVal.Fields()
	if err != nil {
		return nil, &LoadError{Class: name, Message: fmt.Sprintf("iterating properties: %v", err)}
	}

	var props []Property
	for iter.Next() {
		propName := iter.Selector().String()
		if propName == "id" || propName == "self" {
			return nil, &LoadError{Class: name, Message: fmt.Sprintf("property name %q is reserved", propName), Pos: iter.Value().Pos()}
		}
		p, err := compileProperty(iter.Value(), name, propName)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	if len(props) == 0 {
		return nil, &LoadError{Class: name, Message: "record class declares no properties", Pos: v.Pos()}
	}

	return &Class{Name: name, Properties: props}, nil
}

func compileProperty(v cue.Value, class, name string) (Property, error) {
	tv := v.LookupPath(cue.ParsePath("type"))
	if !tv.Exists() {
		return Property{}, &LoadError{Class: class, Message: fmt.Sprintf("property %s requires a type", name), Pos: v.Pos()}
	}
	typeName, err := tv.String()
	if err != nil {
		return Property{}, &LoadError{Class: class, Message: fmt.Sprintf("property %s: type must be a string", name), Pos: tv.Pos()}
	}
	if !ValidType(Type(typeName)) {
		return Property{}, &LoadError{Class: class, Message: fmt.Sprintf("property %s: unknown base type %q", name, typeName), Pos: tv.Pos()}
	}

	optional := false
	if ov := v.LookupPath(cue.ParsePath("optional")); ov.Exists() {
		optional, err = ov.Bool()
		if err != nil {
			return Property{}, &LoadError{Class: class, Message: fmt.Sprintf("property %s: optional must be a boolean", name), Pos: ov.Pos()}
		}
	}

	return Property{Name: name, Type: Type(typeName), Optional: optional}, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
