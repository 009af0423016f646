package dictutil

import (
	"context"
	"testing"

	"github.com/InfinitTechnologies/Flexinets.Radius.Core/resources"
)

func TestLoadFromFSBundledDictionary(t *testing.T) {
	dict, err := LoadFromFS(context.Background(), resources.DictionaryFS, resources.DefaultDictionaryRoot)
	if err != nil {
		t.Fatalf("could not load bundled dictionary: %v", err)
	}

	userName, err := dict.GetByName("User-Name")
	if err != nil {
		t.Fatalf("User-Name not found in bundled dictionary: %v", err)
	}
	if userName.Code != 1 {
		t.Errorf("User-Name code = %d, want 1", userName.Code)
	}

	acctStatusType, err := dict.GetByName("Acct-Status-Type")
	if err != nil {
		t.Fatalf("Acct-Status-Type not found: %v", err)
	}
	if acctStatusType.EnumValues["Start"] != 1 {
		t.Errorf("Acct-Status-Type enum Start = %d, want 1", acctStatusType.EnumValues["Start"])
	}

	tunnelPassword, err := dict.GetByName("Tunnel-Password")
	if err != nil {
		t.Fatalf("Tunnel-Password not found: %v", err)
	}
	if !tunnelPassword.Tagged || !tunnelPassword.Salted {
		t.Errorf("Tunnel-Password flags = %+v, want Tagged+Salted", tunnelPassword)
	}

	id, ok := dict.VendorId("Microsoft")
	if !ok || id != 311 {
		t.Fatalf("VendorId(Microsoft) = (%d, %v), want (311, true)", id, ok)
	}
	va, ok := dict.GetVendor(311, 16)
	if !ok || va.Name != "MS-MPPE-Send-Key" {
		t.Fatalf("GetVendor(311, 16) = (%+v, %v)", va, ok)
	}
}
