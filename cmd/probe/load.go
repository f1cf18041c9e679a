package main

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/hookkit/probe"
)

var errAbsent = errors.New("probe came back absent")

var (
	loadMember string
	loadParams []string
	loadCall   bool
	loadArgs   []string
	loadStrict bool
)

func init() {
	loadCmd.Flags().StringVar(&loadMember, "member", "", "member to resolve on the loaded type")
	loadCmd.Flags().StringArrayVar(&loadParams, "param", nil, "parameter type of the member (repeatable)")
	loadCmd.Flags().BoolVar(&loadCall, "call", false, "invoke the member on a zero receiver")
	loadCmd.Flags().StringArrayVar(&loadArgs, "arg", nil, "argument for --call, parsed as the matching --param (repeatable)")
	loadCmd.Flags().BoolVar(&loadStrict, "strict", false, "exit non-zero when any probe is absent")
}

var loadCmd = &cobra.Command{
	Use:   "load <locator> <type>",
	Short: "Load a type from a plugin and optionally resolve a member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := session

		params, err := parseParams(loadParams)
		if err != nil {
			return err
		}
		var callArgs []any
		if loadCall {
			if loadMember == "" {
				return fmt.Errorf("--call needs --member")
			}
			if callArgs, err = parseArgs(params, loadArgs); err != nil {
				return err
			}
		}

		present, result := a.load(cmd, args[0], args[1], params, callArgs)
		a.out.records(a.history.Entries())
		if result != nil {
			a.out.line("result: %v", result.Values())
		}
		return strictResult(present)
	},
}

// load runs the probes for one load command and reports whether the last one
// was found.
func (a *app) load(cmd *cobra.Command, locator, typeName string, params []reflect.Type, callArgs []any) (bool, *probe.Result) {
	ctx := cmd.Context()

	t := a.prober.LoadExternalTypeCtx(ctx, locator, typeName, nil)
	if !t.Present() || loadMember == "" {
		return t.Present(), nil
	}

	m := a.prober.ResolveMemberCtx(ctx, t.Value(), loadMember, params...)
	if !m.Present() || !loadCall {
		return m.Present(), nil
	}

	var receiver any
	if m.Value().Kind() != probe.MemberStatic {
		receiver = t.Value().New()
	}
	res, ok := a.prober.InvokeCtx(ctx, m.Value(), receiver, callArgs...).Get()
	if !ok {
		return false, nil
	}
	return true, &res
}

func strictResult(present bool) error {
	if loadStrict && !present {
		return errAbsent
	}
	return nil
}
