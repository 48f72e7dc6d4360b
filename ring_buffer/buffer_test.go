package ring_buffer

import "testing"

func TestBuffer_Push(t *testing.T) {
	t.Run("push past the initial capacity and read everything back in order", func(t *testing.T) {
		ringBuffer := New[int16](4)

		for i := 0; i < 20; i++ {
			ringBuffer.Push(int16(i))
		}

		if ringBuffer.Len() != 20 {
			t.Fatalf("expected length 20, got %d", ringBuffer.Len())
		}

		actual := ringBuffer.Read()

		for i := 0; i < 20; i++ {
			if actual[i] != int16(i) {
				t.Errorf("expected %d, got %d", i, actual[i])
			}
		}
	})

	t.Run("grow after the head has wrapped", func(t *testing.T) {
		ringBuffer := New[int](3)

		ringBuffer.Push(1)
		ringBuffer.Push(2)
		ringBuffer.Push(3)
		ringBuffer.TrimFront(1)
		ringBuffer.Push(4)
		ringBuffer.Push(5)
		ringBuffer.Push(6)

		expected := []int{3, 4, 5, 6}
		actual := ringBuffer.Read()

		if len(actual) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, actual)
		}

		for i := range expected {
			if expected[i] != actual[i] {
				t.Errorf("expected %d, got %d", expected[i], actual[i])
			}
		}
	})
}

func TestBuffer_TrimFront(t *testing.T) {
	t.Run("fill the buffer with digits, trim it, and keep only the most recent ones", func(t *testing.T) {
		ringBuffer := New[int16](10)

		for i := 0; i < 20; i++ {
			ringBuffer.Push(int16(i))
		}

		dropped := ringBuffer.TrimFront(10)
		if dropped != 10 {
			t.Errorf("expected 10 dropped, got %d", dropped)
		}

		expected := []int16{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
		actual := ringBuffer.Read()

		for i := 0; i < 10; i++ {
			if expected[i] != actual[i] {
				t.Errorf("expected %d, got %d", expected[i], actual[i])
			}
		}
	})

	t.Run("trim to zero empties the buffer", func(t *testing.T) {
		ringBuffer := New[int](2)
		ringBuffer.Push(1)

		ringBuffer.TrimFront(0)

		if ringBuffer.Len() != 0 {
			t.Errorf("expected empty buffer, got %d items", ringBuffer.Len())
		}
	})
}

func TestBuffer_Drain(t *testing.T) {
	ringBuffer := New[string](2)
	ringBuffer.Push("a")
	ringBuffer.Push("b")

	items := ringBuffer.Drain()
	if len(items) != 2 || items[0] != "a" || items[1] != "b" {
		t.Errorf("expected [a b], got %v", items)
	}

	if ringBuffer.Len() != 0 {
		t.Errorf("expected empty buffer after drain, got %d", ringBuffer.Len())
	}
}
