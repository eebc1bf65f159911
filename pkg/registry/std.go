package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/spf13/cast"

	"github.com/aretw0/tale/pkg/plot"
)

// RegisterStd adds the standard host actions:
//
//	print  writes "text" to out, expanding {{.key}} from scope
//	log    logs "msg" at info level on the telling's logger, with the other args as (expanded) attributes
//	set    writes every argument into the caller's scope
//	env    returns the environment variable "name", or "default"
func RegisterStd(r *Registry, out io.Writer) {
	r.Register("print", func(_ context.Context, in *plot.Instance, args map[string]any) (any, error) {
		text := Expand(in, cast.ToString(args["text"]))
		if _, err := fmt.Fprintln(out, text); err != nil {
			return nil, err
		}
		return text, nil
	})

	r.Register("log", func(ctx context.Context, in *plot.Instance, args map[string]any) (any, error) {
		keys := make([]string, 0, len(args))
		for k := range args {
			if k != "msg" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		attrs := make([]any, 0, 2*len(keys))
		for _, k := range keys {
			v := args[k]
			if text, ok := v.(string); ok {
				v = Expand(in, text)
			}
			attrs = append(attrs, k, v)
		}
		in.Telling().Logger().InfoContext(ctx, Expand(in, cast.ToString(args["msg"])), attrs...)
		return nil, nil
	})

	r.Register("set", func(_ context.Context, in *plot.Instance, args map[string]any) (any, error) {
		for k, v := range args {
			in.Write(k, v)
		}
		return nil, nil
	})

	r.Register("env", func(_ context.Context, _ *plot.Instance, args map[string]any) (any, error) {
		if v, ok := os.LookupEnv(cast.ToString(args["name"])); ok {
			return v, nil
		}
		return args["default"], nil
	})
}

// Expand renders text as a text/template over a snapshot of in's scope, so
// "{{.name}}" reads the nearest "name" and a name that is not set renders
// empty. Text that is not a valid template, or fails to render, is returned
// unchanged.
func Expand(in *plot.Instance, text string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	tmpl, err := template.New("text").Option("missingkey=error").Parse(text)
	if err != nil {
		return text
	}
	data := in.Scope().Snapshot()
	names := map[string]bool{}
	fieldNames(tmpl.Tree.Root, names)
	for name := range names {
		if _, ok := data[name]; !ok {
			data[name] = ""
		}
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return text
	}
	return b.String()
}

// fieldNames collects the names of single-level field references (".name").
func fieldNames(node parse.Node, into map[string]bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			fieldNames(c, into)
		}
	case *parse.ActionNode:
		fieldNames(n.Pipe, into)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, c := range n.Cmds {
			fieldNames(c, into)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			fieldNames(arg, into)
		}
	case *parse.FieldNode:
		if len(n.Ident) == 1 {
			into[n.Ident[0]] = true
		}
	case *parse.IfNode:
		fieldNames(n.Pipe, into)
		fieldNames(n.List, into)
		fieldNames(n.ElseList, into)
	case *parse.WithNode:
		fieldNames(n.Pipe, into)
	case *parse.RangeNode:
		fieldNames(n.Pipe, into)
	case *parse.TemplateNode:
		fieldNames(n.Pipe, into)
	}
}
