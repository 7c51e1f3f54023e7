package qtensor

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKronecker(t *testing.T) {
	Convey("Given two small matrices", t, func() {
		a := [][]float64{{1, 2}, {3, 4}}
		b := [][]float64{{0, 5}, {6, 7}}

		Convey("It should lay out the blocks a[i][j]·b", func() {
			So(Kronecker(a, b), ShouldResemble, [][]float64{
				{0, 5, 0, 10},
				{6, 7, 12, 14},
				{0, 15, 0, 20},
				{18, 21, 24, 28},
			})
		})

		Convey("It should handle rectangular factors", func() {
			got := Kronecker([][]float64{{1, 2}}, [][]float64{{1}, {10}})
			So(got, ShouldResemble, [][]float64{{1, 2}, {10, 20}})
		})

		Convey("An empty factor should give an empty product", func() {
			So(Kronecker(nil, b), ShouldBeNil)
		})
	})
}

func TestDenseTensorPower(t *testing.T) {
	Convey("Given the canonical operator", t, func() {
		op := Operator{{1, 3}, {2, 4}}

		Convey("The dense product should reproduce the regression vector", func() {
			dense, err := DenseTensorPower(op, 3)
			So(err, ShouldBeNil)
			So(len(dense), ShouldEqual, 8)
			So(MatVec(dense, sequence(8)), ShouldResemble, canonicalExpect)
		})

		Convey("Rank zero should be the 1x1 identity", func() {
			dense, err := DenseTensorPower(op, 0)
			So(err, ShouldBeNil)
			So(dense, ShouldResemble, [][]float64{{1}})
		})

		Convey("Ranks outside the supported window should fail", func() {
			_, err := DenseTensorPower(op, MaxDenseRank+1)
			So(err, ShouldNotBeNil)
			_, err = DenseTensorPower(op, -1)
			So(err, ShouldNotBeNil)
		})
	})
}
