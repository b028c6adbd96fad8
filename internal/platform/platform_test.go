package platform

import "testing"

func TestDetect_Amazon(t *testing.T) {
	t.Parallel()

	cases := []string{
		"https://www.amazon.com/dp/B08N5WRWNW",
		"https://amazon.com/gp/product/B08N5WRWNW?th=1",
		"https://amzn.to/3xYz",
	}
	for _, raw := range cases {
		p, err := Detect(raw)
		if err != nil {
			t.Fatalf("Detect(%q) error: %v", raw, err)
		}
		if p != Amazon {
			t.Fatalf("Detect(%q): expected %q, got %q", raw, Amazon, p)
		}
	}
}

func TestDetect_Shopee(t *testing.T) {
	t.Parallel()

	cases := []string{
		"https://shopee.co.id/Produk-i.178926468.21448123549",
		"https://shopee.tw/product/1/2",
		"https://s.shopee.co.id/abc123",
	}
	for _, raw := range cases {
		p, err := Detect(raw)
		if err != nil {
			t.Fatalf("Detect(%q) error: %v", raw, err)
		}
		if p != Shopee {
			t.Fatalf("Detect(%q): expected %q, got %q", raw, Shopee, p)
		}
	}
}

func TestDetect_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := Detect("https://tokopedia.com/item/1"); err == nil {
		t.Fatal("expected error for unsupported host")
	}
	if _, err := Detect("not a url"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
