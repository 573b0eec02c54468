// Traffic Atlas - Urban Traffic Aggregation and Map Visualization
// Copyright 2026 Traffic Atlas contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trafficatlas/trafficatlas

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port  int    `validate:"min=1,max=65535"`
	Level string `validate:"oneof=debug info warn error"`
	Dir   string `validate:"required"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	cfg := testConfig{Port: 8080, Level: "info", Dir: "/data"}
	assert.NoError(t, ValidateStruct(&cfg))
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	cfg := testConfig{Port: 0, Level: "loud", Dir: ""}
	err := ValidateStruct(&cfg)
	require.Error(t, err)

	var structErr *StructError
	require.ErrorAs(t, err, &structErr)
	assert.Len(t, structErr.Fields(), 3)
	assert.Contains(t, err.Error(), "Port")
	assert.Contains(t, err.Error(), "oneof")
	assert.Contains(t, err.Error(), "required")
}

func TestValidateStruct_Nested(t *testing.T) {
	t.Parallel()

	type outer struct {
		Inner testConfig
	}

	err := ValidateStruct(&outer{Inner: testConfig{Port: 70000, Level: "info", Dir: "/data"}})
	require.Error(t, err)

	var structErr *StructError
	require.ErrorAs(t, err, &structErr)
	require.Len(t, structErr.Fields(), 1)
	assert.Contains(t, structErr.Fields()[0].Field, "Inner.Port")
	assert.Equal(t, "max", structErr.Fields()[0].Tag)
	assert.Equal(t, "65535", structErr.Fields()[0].Param)
}
