package source

import "context"

type reply[T any] struct {
	end  error
	item T
}

// Iter adapts src to the blocking Iterator contract. Replies are handed
// over through a channel, so synchronous sources do not grow the stack.
func Iter[T any](src Source[T]) Iterator[T] {
	return &sourceIter[T]{src: src}
}

type sourceIter[T any] struct {
	src  Source[T]
	done bool
}

func (it *sourceIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.done {
		return zero[T](), false, nil
	}
	ch := make(chan reply[T], 1)
	it.src(nil, func(end error, item T) {
		ch <- reply[T]{end: end, item: item}
	})

	select {
	case r := <-ch:
		if r.end != nil {
			it.done = true
			if IsEnd(r.end) {
				return zero[T](), false, nil
			}
			return zero[T](), false, r.end
		}
		return r.item, true, nil
	case <-ctx.Done():
		it.done = true
		Abort(it.src, ctx.Err())
		return zero[T](), false, ctx.Err()
	}
}

func (it *sourceIter[T]) Close() error {
	if !it.done {
		it.done = true
		Abort(it.src, ErrEnd)
	}
	return nil
}

// Drain pulls every item from src and hands it to sink until the stream
// ends. A sink error aborts the source and is returned.
func Drain[T any](ctx context.Context, src Source[T], sink func(context.Context, T) error) error {
	it := &sourceIter[T]{src: src}
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := sink(ctx, val); err != nil {
			_ = it.Close()
			return err
		}
	}
}

// Collect drains src into a slice. Items read before a failure are
// returned alongside the error.
func Collect[T any](ctx context.Context, src Source[T]) ([]T, error) {
	var result []T
	err := Drain(ctx, src, func(_ context.Context, v T) error {
		result = append(result, v)
		return nil
	})
	return result, err
}
