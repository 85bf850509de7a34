package checks

import (
	"fmt"
	"path"
	"strings"

	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/pkgconfig"
	"github.com/goplus/llconf/internal/probe"
	"github.com/goplus/llconf/internal/toolchain"
)

type qt4Tool struct {
	builder feature.Builder
	sample  string
	ext     string
}

var qt4Tools = map[string]qt4Tool{
	"moc": {
		builder: feature.Builder{
			Action: "$QT4_MOCCOM",
			Prefix: "$QT4_MOCIMPLPREFIX",
			Suffix: "$QT4_MOCIMPLSUFFIX",
			ComStr: "QT4_MOCCOMSTR",
		},
		sample: `class class_name : public QObject
{
Q_OBJECT
};
`,
		ext: ".h",
	},
	"uic": {
		builder: feature.Builder{
			Action:    "$QT4_UICCOM",
			Prefix:    "$QT4_UICDECLPREFIX",
			Suffix:    "$QT4_UICDECLSUFFIX",
			SrcSuffix: "$QT4_UISUFFIX",
			ComStr:    "QT4_UICCOMSTR",
		},
		sample: `<ui version="4.0" >
 <class>Form</class>
 <widget class="QWidget" name="Form" >
  <property name="geometry" >
   <rect>
    <x>0</x>
    <y>0</y>
    <width>400</width>
    <height>300</height>
   </rect>
  </property>
  <property name="windowTitle" >
   <string>Form</string>
  </property>
 </widget>
 <resources/>
 <connections/>
</ui>
`,
		ext: ".ui",
	},
}

var qt4ToolDefaults = map[string]string{
	"QT4_MOCCOM":        "$QT4_MOC -o $TARGET $SOURCE",
	"QT4_MOCIMPLPREFIX": "moc_",
	"QT4_MOCIMPLSUFFIX": "$CXXFILESUFFIX",
	"QT4_UICCOM":        "$QT4_UIC -o $TARGET $SOURCE",
	"QT4_UISUFFIX":      ".ui",
	"QT4_UICDECLPREFIX": "ui_",
	"QT4_UICDECLSUFFIX": ".h",
	"CXXFILESUFFIX":     ".cc",
}

var qt4ToolKeys = []string{
	"QT4_MOC", "QT4_UIC", "QT4_MOCCOM", "QT4_MOCIMPLPREFIX", "QT4_MOCIMPLSUFFIX",
	"QT4_UICCOM", "QT4_UISUFFIX", "QT4_UICDECLPREFIX", "QT4_UICDECLSUFFIX", "CXXFILESUFFIX",
}

// Qt4Tools checks for the Qt 4 code generators named in its arguments
// ("moc" and "uic" by default). Each tool is located, in QT4DIR/bin first,
// and run on a sample input. On success it provides the builders "Moc4"
// and "Uic4".
var Qt4Tools = probe.Func(qt4ToolKeys, func(ctx *probe.Context) error {
	tools := argsOr(ctx, "moc", "uic")
	ctx.Message("Qt tools " + strings.Join(tools, ", "))

	e := ctx.Env()
	for k, v := range qt4ToolDefaults {
		e.SetDefault(k, v)
	}
	var dirs []string
	if dir := e.String("QT4DIR"); dir != "" {
		dirs = append(dirs, path.Join(dir, "bin"))
	}

	var regs []feature.Registration
	for _, name := range tools {
		tool, ok := qt4Tools[name]
		if !ok {
			return fmt.Errorf("unknown Qt tool %q", name)
		}
		key := "QT4_" + strings.ToUpper(name)
		if !e.Has(key) {
			p, err := ctx.WhereIs(name, dirs...)
			if err != nil {
				return err
			}
			e.Set(key, p)
		}
		builderName := strings.ToUpper(name[:1]) + name[1:] + "4"
		b := tool.builder
		b.Name = builderName
		if err := ctx.TryBuild(b, tool.sample, tool.ext); err != nil {
			return err
		}
		regs = append(regs, feature.Registration{
			Name:    builderName,
			Set:     map[string]string{key: e.String(key)},
			Builder: &b,
		})
	}
	ctx.Register(regs...)
	return nil
})

// qt4Libs maps each Qt 4 library to a header the trial includes. Empty
// entries use the library name.
var qt4Libs = map[string]string{
	"QtCore":     "QtGlobal",
	"QtGui":      "QApplication",
	"QtOpenGL":   "QGLWidget",
	"Qt3Support": "",
	"QtSql":      "",
	"QtNetwork":  "",
	"QtSvg":      "",
	"QtTest":     "",
	"QtXml":      "",
	"QtUiTools":  "",
	"QtDesigner": "",
	"QtDBus":     "",
}

// Qt4Libs checks for the Qt 4 libraries named in its arguments (QtCore
// and QtGui by default). POSIX targets use pkg-config; Windows targets
// need QT4DIR. It provides "qt4" and one capability per library.
var Qt4Libs = probe.Func(pkgconfig.Keys, func(ctx *probe.Context) error {
	libs := argsOr(ctx, "QtCore", "QtGui")
	ctx.Message("Qt libraries " + strings.Join(libs, ", "))

	e := ctx.Env()
	var (
		src  strings.Builder
		regs []feature.Registration
	)
	for _, lib := range libs {
		header, ok := qt4Libs[lib]
		if !ok {
			return fmt.Errorf("unknown Qt library %q", lib)
		}
		if header == "" {
			header = lib
		}
		fmt.Fprintf(&src, "#include <%s>\n", header)
	}
	src.WriteString("int main() { return 0; }\n")

	common := make(map[string][]string)
	if ctx.Platform() == toolchain.Windows {
		qtdir := e.String("QT4DIR")
		if qtdir == "" {
			return &probe.Error{Probe: ctx.Name(), Op: "setup", Err: fmt.Errorf("QT4DIR must be set for Windows targets")}
		}
		common["CPPPATH"] = []string{path.Join("$QT4DIR", "include")}
		common["LIBPATH"] = []string{path.Join("$QT4DIR", "lib")}
		for k, v := range common {
			e.AppendUnique(k, v...)
		}
		for _, lib := range libs {
			vars := map[string][]string{
				"CPPPATH": {path.Join("$QT4DIR", "include", lib)},
				"LIBS":    {lib + "4"},
			}
			if lib == "QtOpenGL" {
				vars["LIBS"] = append(vars["LIBS"], "opengl32")
			}
			for k, v := range vars {
				e.AppendUnique(k, v...)
			}
			regs = append(regs, feature.Registration{Name: lib, Append: vars})
		}
	} else {
		pc, err := ctx.WhereIs(pkgConfig(ctx))
		if err != nil {
			return err
		}
		for _, lib := range libs {
			flags, err := ctx.ParseConfig(pc, "--libs", "--cflags", lib)
			if err != nil {
				return err
			}
			regs = append(regs, feature.Registration{Name: lib, Append: flags.Vars()})
		}
	}

	if err := ctx.TryLink(src.String(), ".cpp"); err != nil {
		return err
	}
	ctx.Register(feature.Registration{Name: "qt4", Append: common})
	ctx.Register(regs...)
	return nil
})
