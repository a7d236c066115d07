package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/bistro/internal/adapters/repository"
	"github.com/okian/bistro/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type storeFactory struct {
	name string
	open func(t *testing.T) repository.Store
}

func factories() []storeFactory {
	return []storeFactory{
		{name: "memory", open: func(t *testing.T) repository.Store {
			return repository.NewMemoryStore()
		}},
		{name: "sqlite", open: func(t *testing.T) repository.Store {
			s, err := repository.OpenSQL(context.Background(), repository.DriverSQLite, "file::memory:")
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		}},
	}
}

func pasta() model.Fields {
	return model.Fields{
		Name:    model.StringPtr("Pasta House"),
		Address: model.StringPtr("1 Main St"),
		Phone:   model.StringPtr("555-0100"),
		Cuisine: model.StringPtr("italian"),
	}
}

func TestStore_Contract(t *testing.T) {
	for _, f := range factories() {
		Convey(fmt.Sprintf("Given an empty %s store", f.name), t, func() {
			ctx := context.Background()
			s := f.open(t)
			Reset(func() { _ = s.Close() })

			Convey("When listing", func() {
				all, err := s.FindAll(ctx)

				Convey("Then the list is empty but not nil", func() {
					So(err, ShouldBeNil)
					So(all, ShouldNotBeNil)
					So(all, ShouldBeEmpty)
				})
			})

			Convey("When creating a restaurant with only a name", func() {
				r, err := s.Create(ctx, model.Fields{Name: model.StringPtr("Soba")})

				Convey("Then it gets id 1 and blank optional fields", func() {
					So(err, ShouldBeNil)
					So(r, ShouldResemble, model.Restaurant{ID: 1, Name: "Soba"})

					got, err := s.FindByID(ctx, 1)
					So(err, ShouldBeNil)
					So(got, ShouldResemble, r)
				})
			})

			Convey("When several restaurants are created", func() {
				a, _ := s.Create(ctx, pasta())
				b, _ := s.Create(ctx, model.Fields{Name: model.StringPtr("Soba")})
				c, _ := s.Create(ctx, model.Fields{Name: model.StringPtr("Taqueria")})

				Convey("Then ids increase and the list is ordered by id", func() {
					So(b.ID, ShouldBeGreaterThan, a.ID)
					So(c.ID, ShouldBeGreaterThan, b.ID)

					all, err := s.FindAll(ctx)
					So(err, ShouldBeNil)
					So(all, ShouldResemble, []model.Restaurant{a, b, c})

					n, err := s.Count(ctx)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 3)
				})

				Convey("Then deleting the newest does not free its id", func() {
					So(s.Delete(ctx, c.ID), ShouldBeNil)
					d, err := s.Create(ctx, model.Fields{Name: model.StringPtr("Dumplings")})
					So(err, ShouldBeNil)
					So(d.ID, ShouldBeGreaterThan, c.ID)
				})
			})

			Convey("When a stored restaurant is updated partially", func() {
				r, _ := s.Create(ctx, pasta())
				got, err := s.Update(ctx, r.ID, model.Fields{Cuisine: model.StringPtr("sicilian")}, true)

				Convey("Then only the supplied field changes", func() {
					So(err, ShouldBeNil)
					want := r
					want.Cuisine = "sicilian"
					So(got, ShouldResemble, want)

					stored, _ := s.FindByID(ctx, r.ID)
					So(stored, ShouldResemble, want)
				})
			})

			Convey("When a partial update supplies nothing", func() {
				r, _ := s.Create(ctx, pasta())
				got, err := s.Update(ctx, r.ID, model.Fields{}, true)

				Convey("Then the record is returned unchanged", func() {
					So(err, ShouldBeNil)
					So(got, ShouldResemble, r)
				})
			})

			Convey("When a stored restaurant is replaced", func() {
				r, _ := s.Create(ctx, pasta())
				got, err := s.Update(ctx, r.ID, model.Fields{Name: model.StringPtr("Pasta Palace")}, false)

				Convey("Then omitted fields are cleared", func() {
					So(err, ShouldBeNil)
					So(got, ShouldResemble, model.Restaurant{ID: r.ID, Name: "Pasta Palace"})
				})
			})

			Convey("When a stored restaurant is deleted", func() {
				r, _ := s.Create(ctx, pasta())
				err := s.Delete(ctx, r.ID)

				Convey("Then it is gone and a second delete reports not found", func() {
					So(err, ShouldBeNil)
					_, err = s.FindByID(ctx, r.ID)
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
					So(errors.Is(s.Delete(ctx, r.ID), repository.ErrNotFound), ShouldBeTrue)
				})
			})

			Convey("When addressing an unknown id", func() {
				_, findErr := s.FindByID(ctx, 42)
				_, updErr := s.Update(ctx, 42, pasta(), false)
				delErr := s.Delete(ctx, 42)

				Convey("Then every operation reports not found", func() {
					So(errors.Is(findErr, repository.ErrNotFound), ShouldBeTrue)
					So(errors.Is(updErr, repository.ErrNotFound), ShouldBeTrue)
					So(errors.Is(delErr, repository.ErrNotFound), ShouldBeTrue)
				})
			})

			Convey("When pinging an open store", func() {
				So(s.Ping(ctx), ShouldBeNil)
			})

			Convey("When the store has been closed", func() {
				So(s.Close(), ShouldBeNil)
				_, findErr := s.FindByID(ctx, 1)
				_, createErr := s.Create(ctx, pasta())
				_, countErr := s.Count(ctx)

				Convey("Then every call reports ErrClosed", func() {
					So(errors.Is(findErr, repository.ErrClosed), ShouldBeTrue)
					So(errors.Is(createErr, repository.ErrClosed), ShouldBeTrue)
					So(errors.Is(countErr, repository.ErrClosed), ShouldBeTrue)
					So(errors.Is(s.Ping(ctx), repository.ErrClosed), ShouldBeTrue)
					So(s.Close(), ShouldBeNil)
				})
			})
		})
	}
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		Convey("When many goroutines create at once", func() {
			const n = 50
			var wg sync.WaitGroup
			ids := make(chan int64, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					r, err := s.Create(ctx, model.Fields{Name: model.StringPtr(fmt.Sprintf("r%d", i))})
					if err == nil {
						ids <- r.ID
					}
				}(i)
			}
			wg.Wait()
			close(ids)

			Convey("Then every id is unique", func() {
				seen := map[int64]bool{}
				for id := range ids {
					So(seen[id], ShouldBeFalse)
					seen[id] = true
				}
				So(len(seen), ShouldEqual, n)
			})
		})

		Convey("When the store is closed", func() {
			So(s.Close(), ShouldBeNil)

			Convey("Then calls fail with ErrClosed", func() {
				_, err := s.FindAll(ctx)
				So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
				So(errors.Is(s.Ping(ctx), repository.ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestOpenSQL_UnsupportedDriver(t *testing.T) {
	Convey("Given an unknown driver name", t, func() {
		_, err := repository.OpenSQL(context.Background(), "oracle", "whatever")

		Convey("Then opening fails with ErrUnsupportedDriver", func() {
			So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
		})
	})
}
