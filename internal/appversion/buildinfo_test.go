package appversion_test

import (
	"testing"

	"eco/internal/appversion"
)

func TestStringNeverEmpty(t *testing.T) {
	t.Parallel()

	if appversion.String() == "" {
		t.Fatal("appversion.String() must not be empty")
	}
}
