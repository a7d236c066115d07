package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/bistro/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFields_Apply(t *testing.T) {
	Convey("Given a stored restaurant", t, func() {
		r := model.Restaurant{ID: 7, Name: "Pasta House", Address: "1 Main St", Phone: "555-0100", Cuisine: "italian"}

		Convey("When applying a partial update with only the name", func() {
			model.Fields{Name: model.StringPtr("Pasta Palace")}.Apply(&r, true)

			Convey("Then only the name changes", func() {
				So(r.ID, ShouldEqual, 7)
				So(r.Name, ShouldEqual, "Pasta Palace")
				So(r.Address, ShouldEqual, "1 Main St")
				So(r.Phone, ShouldEqual, "555-0100")
				So(r.Cuisine, ShouldEqual, "italian")
			})
		})

		Convey("When applying a full replacement with only the name", func() {
			model.Fields{Name: model.StringPtr("Pasta Palace")}.Apply(&r, false)

			Convey("Then omitted fields are cleared but the id is kept", func() {
				So(r.ID, ShouldEqual, 7)
				So(r.Name, ShouldEqual, "Pasta Palace")
				So(r.Address, ShouldEqual, "")
				So(r.Phone, ShouldEqual, "")
				So(r.Cuisine, ShouldEqual, "")
			})
		})

		Convey("When applying an explicit empty string in partial mode", func() {
			model.Fields{Address: model.StringPtr("")}.Apply(&r, true)

			Convey("Then the field is cleared", func() {
				So(r.Address, ShouldEqual, "")
				So(r.Name, ShouldEqual, "Pasta House")
			})
		})
	})
}

func TestFields_Columns(t *testing.T) {
	Convey("Given fields with name and cuisine", t, func() {
		f := model.Fields{Name: model.StringPtr("Soba"), Cuisine: model.StringPtr("japanese")}

		Convey("When asking for partial columns", func() {
			cols, vals := f.Columns(true)

			Convey("Then only supplied columns are listed in order", func() {
				So(cols, ShouldResemble, []string{"name", "cuisine"})
				So(vals, ShouldResemble, []any{"Soba", "japanese"})
			})
		})

		Convey("When asking for full columns", func() {
			cols, vals := f.Columns(false)

			Convey("Then every column is listed with blanks for omitted ones", func() {
				So(cols, ShouldResemble, []string{"name", "address", "phone", "cuisine"})
				So(vals, ShouldResemble, []any{"Soba", "", "", "japanese"})
			})
		})

		Convey("Then it is not empty", func() {
			So(f.Empty(), ShouldBeFalse)
			So(model.Fields{}.Empty(), ShouldBeTrue)
		})
	})
}

func TestRestaurant_JSON(t *testing.T) {
	Convey("Given a restaurant", t, func() {
		r := model.Restaurant{ID: 3, Name: "Pasta House"}

		Convey("When it is serialized", func() {
			b, err := json.Marshal(r)

			Convey("Then it uses the snake case external names", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"id":3,"name":"Pasta House","address":"","phone":"","cuisine":""}`)
			})
		})
	})
}
