package models_test

import (
	"encoding/json"
	"testing"

	"github.com/shashiranjanraj/maalgodam/app/models"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		totalRows, perPage, currentPage int64
		wantPages                       int64
		wantNext                        bool
	}{
		{0, 10, 1, 0, false},
		{10, 10, 1, 1, false},
		{11, 10, 1, 2, true},
		{25, 10, 2, 3, true},
		{25, 10, 3, 3, false},
		{30, 10, 1, 3, true},
	}

	for _, tc := range cases {
		p := models.NewPagination(tc.totalRows, tc.perPage, tc.currentPage)
		if p.TotalPages != tc.wantPages {
			t.Errorf("NewPagination(%d, %d, %d).TotalPages = %d, want %d",
				tc.totalRows, tc.perPage, tc.currentPage, p.TotalPages, tc.wantPages)
		}
		if p.HasNextPage != tc.wantNext {
			t.Errorf("NewPagination(%d, %d, %d).HasNextPage = %v, want %v",
				tc.totalRows, tc.perPage, tc.currentPage, p.HasNextPage, tc.wantNext)
		}
	}
}

func TestItemUpdateEmpty(t *testing.T) {
	if !(models.ItemUpdate{}).Empty() {
		t.Error("zero update should be empty")
	}

	stock := int64(0)
	if (models.ItemUpdate{Stock: &stock}).Empty() {
		t.Error("update with a zero-valued field is still an update")
	}
}

func TestItemUpdateDecodeKeepsAbsentFieldsNil(t *testing.T) {
	var u models.ItemUpdate
	if err := json.Unmarshal([]byte(`{"stock": 0}`), &u); err != nil {
		t.Fatal(err)
	}
	if u.Stock == nil || *u.Stock != 0 {
		t.Error("supplied zero stock must decode as present")
	}
	if u.Name != nil || u.Price != nil {
		t.Error("absent fields must stay nil")
	}
}
