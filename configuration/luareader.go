// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"reflect"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/michielbdejong/ilp-connector/fault"
)

// ParseConfigurationFile - read and execute a Lua file and assign
// the results to a configuration structure
//
// the global "arg" table holds the file name at arg[0] followed by
// any extra arguments
func ParseConfigurationFile(fileName string, config interface{}, arguments ...string) error {
	if err := checkStructPointer(config); nil != err {
		return err
	}

	L := newState(fileName, arguments)
	defer L.Close()

	if err := L.DoFile(fileName); nil != err {
		return err
	}
	return mapResult(L, config)
}

// ParseConfigurationString - as ParseConfigurationFile for a script
// held in memory, name is only used for arg[0]
func ParseConfigurationString(name string, script string, config interface{}, arguments ...string) error {
	if err := checkStructPointer(config); nil != err {
		return err
	}

	L := newState(name, arguments)
	defer L.Close()

	if err := L.DoString(script); nil != err {
		return err
	}
	return mapResult(L, config)
}

func newState(name string, arguments []string) *lua.LState {
	L := lua.NewState()
	L.OpenLibs()

	arg := &lua.LTable{}
	arg.Insert(0, lua.LString(name))
	for _, a := range arguments {
		arg.Append(lua.LString(a))
	}
	L.SetGlobal("arg", arg)
	return L
}

// the value returned by the script is left on top of the stack
func mapResult(L *lua.LState, config interface{}) error {
	table, ok := L.Get(L.GetTop()).(*lua.LTable)
	if !ok {
		return fault.ErrConfigurationNotTable
	}

	mapper := gluamapper.Mapper{
		Option: gluamapper.Option{
			NameFunc: func(s string) string {
				return s
			},
			TagName: "gluamapper",
		},
	}
	return mapper.Map(table, config)
}

// since interface{} is untyped, have to verify type compatibility at run-time
func checkStructPointer(config interface{}) error {
	rv := reflect.ValueOf(config)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fault.ErrInvalidStructPointer
	}
	if rv.Elem().Kind() != reflect.Struct {
		return fault.ErrInvalidStructPointer
	}
	return nil
}
