// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package webcmd

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/nuancier/nuancier/pkg/pointertrack"
)

const (
	WSCommand_Init         = "init"
	WSCommand_PointerDown  = "pointerdown"
	WSCommand_PointerMove  = "pointermove"
	WSCommand_PointerUp    = "pointerup"
	WSCommand_SetHue       = "sethue"
	WSCommand_SetChannel   = "setchannel"
	WSCommand_SetHex       = "sethex"
	WSCommand_Select       = "select"
	WSCommand_ClearHistory = "clearhistory"
)

type WSCommandType interface {
	GetWSCommand() string
}

type InitWSCommand struct {
	WSCommand string `json:"wscommand"`
	Hash      string `json:"hash"`
}

func (cmd *InitWSCommand) GetWSCommand() string {
	return cmd.WSCommand
}

// rect is the saturation/value box at the time of the event, nil if not mounted
type PointerWSCommand struct {
	WSCommand string             `json:"wscommand"`
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	Rect      *pointertrack.Rect `json:"rect,omitempty"`
}

func (cmd *PointerWSCommand) GetWSCommand() string {
	return cmd.WSCommand
}

func (cmd *PointerWSCommand) Point() pointertrack.Point {
	return pointertrack.Point{X: cmd.X, Y: cmd.Y}
}

type PointerUpWSCommand struct {
	WSCommand string `json:"wscommand"`
}

func (cmd *PointerUpWSCommand) GetWSCommand() string {
	return cmd.WSCommand
}

// raw slider value, numbers are accepted and converted
type SetHueWSCommand struct {
	WSCommand string `json:"wscommand"`
	Value     string `json:"value"`
}

func (cmd *SetHueWSCommand) GetWSCommand() string {
	return cmd.WSCommand
}

type SetChannelWSCommand struct {
	WSCommand string `json:"wscommand"`
	Channel   string `json:"channel"`
	Value     string `json:"value"`
}

func (cmd *SetChannelWSCommand) GetWSCommand() string {
	return cmd.WSCommand
}

type SetHexWSCommand struct {
	WSCommand string `json:"wscommand"`
	Text      string `json:"text"`
}

func (cmd *SetHexWSCommand) GetWSCommand() string {
	return cmd.WSCommand
}

type SelectWSCommand struct {
	WSCommand string `json:"wscommand"`
	Color     string `json:"color"`
}

func (cmd *SelectWSCommand) GetWSCommand() string {
	return cmd.WSCommand
}

type ClearHistoryWSCommand struct {
	WSCommand string `json:"wscommand"`
}

func (cmd *ClearHistoryWSCommand) GetWSCommand() string {
	return cmd.WSCommand
}

// does a mapstructure using "json" tags, numbers are allowed where strings are expected
func doMapStructure(out any, input any) error {
	dconfig := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(dconfig)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func decodeCmd[T any, PT interface {
	*T
	WSCommandType
}](cmdMap map[string]any) (WSCommandType, error) {
	var cmd T
	err := doMapStructure(&cmd, cmdMap)
	if err != nil {
		return nil, fmt.Errorf("error decoding %T: %w", cmd, err)
	}
	return PT(&cmd), nil
}

func ParseWSCommandMap(cmdMap map[string]any) (WSCommandType, error) {
	cmdType, ok := cmdMap["wscommand"].(string)
	if !ok {
		return nil, fmt.Errorf("no wscommand field in command map")
	}
	switch cmdType {
	case WSCommand_Init:
		return decodeCmd[InitWSCommand](cmdMap)
	case WSCommand_PointerDown, WSCommand_PointerMove:
		return decodeCmd[PointerWSCommand](cmdMap)
	case WSCommand_PointerUp:
		return decodeCmd[PointerUpWSCommand](cmdMap)
	case WSCommand_SetHue:
		return decodeCmd[SetHueWSCommand](cmdMap)
	case WSCommand_SetChannel:
		return decodeCmd[SetChannelWSCommand](cmdMap)
	case WSCommand_SetHex:
		return decodeCmd[SetHexWSCommand](cmdMap)
	case WSCommand_Select:
		return decodeCmd[SelectWSCommand](cmdMap)
	case WSCommand_ClearHistory:
		return decodeCmd[ClearHistoryWSCommand](cmdMap)
	default:
		return nil, fmt.Errorf("unknown wscommand type %q", cmdType)
	}
}
