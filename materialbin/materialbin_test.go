package materialbin_test

import (
	"bytes"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/asset-redirect/errors"
	"github.com/wippyai/asset-redirect/materialbin"
	"github.com/wippyai/asset-redirect/materialbin/bgfx"
	"github.com/wippyai/asset-redirect/materialbin/materialtest"
)

func TestRoundTripSameVersion(t *testing.T) {
	for _, v := range materialbin.AllVersions {
		t.Run(v.String(), func(t *testing.T) {
			data := materialtest.Encode("RenderChunk", v)

			m, err := materialbin.Parse(data, v)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			want := materialtest.Downgrade(materialtest.Material("RenderChunk"), v)
			if !reflect.DeepEqual(m, want) {
				t.Errorf("parsed material differs from source\ngot:  %+v\nwant: %+v", m, want)
			}

			again, err := m.Encode(v)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !bytes.Equal(again, data) {
				t.Errorf("re-encoded bytes differ: %d vs %d bytes", len(again), len(data))
			}
		})
	}
}

func TestProbeDetectsVersion(t *testing.T) {
	for _, v := range materialbin.AllVersions {
		t.Run(v.String(), func(t *testing.T) {
			got, m, err := materialbin.Probe(materialtest.Encode("RenderChunk", v))
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if got != v {
				t.Errorf("Probe = %s, want %s", got, v)
			}
			if m.Name != "RenderChunk" {
				t.Errorf("Name = %q", m.Name)
			}
		})
	}
}

func TestProbeCandidates(t *testing.T) {
	data := materialtest.Encode("RenderChunk", materialbin.V1_20_80)

	if _, _, err := materialbin.Probe(data, materialbin.V1_21_110, materialbin.V1_21_20); err == nil {
		t.Fatal("Probe with non-matching candidates should fail")
	} else {
		var e *errors.Error
		if !stderrors.As(err, &e) || e.Kind != errors.KindUnsupported {
			t.Errorf("error = %v, want unsupported", err)
		}
	}

	v, _, err := materialbin.Probe(data, materialbin.V1_18_30, materialbin.V1_20_80)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if v != materialbin.V1_20_80 {
		t.Errorf("Probe = %s", v)
	}
}

func TestConvertDowngrade(t *testing.T) {
	src := materialtest.Encode("RenderChunk", materialbin.V1_21_110)
	m, err := materialbin.Parse(src, materialbin.V1_21_110)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out, err := m.Encode(materialbin.V1_18_30)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := materialbin.Parse(out, materialbin.V1_18_30)
	if err != nil {
		t.Fatalf("Parse converted: %v", err)
	}
	want := materialtest.Downgrade(materialtest.Material("RenderChunk"), materialbin.V1_18_30)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("converted material differs\ngot:  %+v\nwant: %+v", got, want)
	}
}

func TestConvertUpgrade(t *testing.T) {
	m, err := materialbin.Parse(materialtest.Encode("RenderChunk", materialbin.V1_18_30), materialbin.V1_18_30)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := m.Encode(materialbin.V1_21_110)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want, err := materialtest.Downgrade(materialtest.Material("RenderChunk"), materialbin.V1_18_30).Encode(materialbin.V1_21_110)
	if err != nil {
		t.Fatalf("Encode want: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("upgraded bytes differ from encoding of downgraded fixture")
	}
	if v, _, err := materialbin.Probe(got); err != nil || v != materialbin.V1_21_110 {
		t.Errorf("Probe upgraded = %s, %v", v, err)
	}
}

func TestShaderBlobsSurvive(t *testing.T) {
	m, err := materialbin.Parse(materialtest.Encode("RenderChunk", materialbin.V1_21_20), materialbin.V1_21_20)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pass := m.Pass("AlphaTest")
	if pass == nil {
		t.Fatal("AlphaTest pass missing")
	}
	if m.Pass("Missing") != nil {
		t.Error("Pass(Missing) should be nil")
	}

	for _, s := range pass.Variants[0].Shaders {
		sh, err := bgfx.Parse(s.Blob)
		if err != nil {
			t.Fatalf("bgfx.Parse %s/%s: %v", s.Key.StageName, s.Key.PlatformName, err)
		}
		want := materialtest.VertexCode
		if s.Key.Stage == materialbin.StageFragment {
			want = materialtest.FragmentCode
		}
		if string(sh.Code) != want {
			t.Errorf("%s code = %q", s.Key.StageName, sh.Code)
		}
	}
}

func TestParseRejects(t *testing.T) {
	good := materialtest.Encode("RenderChunk", materialbin.V1_21_20)

	corrupt := func(f func(b []byte) []byte) []byte {
		return f(append([]byte(nil), good...))
	}

	tests := []struct {
		name   string
		data   []byte
		target error
	}{
		{"empty", nil, nil},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] ^= 0xFF; return b }), materialbin.ErrInvalidMagic},
		{"bad definition", corrupt(func(b []byte) []byte { b[12] = 'X'; return b }), materialbin.ErrInvalidDefinition},
		{"bad trailer", corrupt(func(b []byte) []byte { b[len(b)-1] ^= 0xFF; return b }), materialbin.ErrInvalidMagic},
		{"truncated", good[:len(good)-9], nil},
		{"trailing bytes", append(append([]byte(nil), good...), 0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := materialbin.Parse(tt.data, materialbin.V1_21_20)
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if e.Phase != errors.PhaseParse {
				t.Errorf("Phase = %s", e.Phase)
			}
			if tt.target != nil && !stderrors.Is(err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.target)
			}
		})
	}
}

func TestParseRejectsWrongFormatVersion(t *testing.T) {
	data := materialtest.Encode("RenderChunk", materialbin.V1_19_60)
	_, err := materialbin.Parse(data, materialbin.V1_21_110)
	if !stderrors.Is(err, materialbin.ErrFormatVersion) {
		t.Fatalf("error = %v, want ErrFormatVersion", err)
	}
}

func TestParseRejectsEncrypted(t *testing.T) {
	data := materialtest.Encode("RenderChunk", materialbin.V1_21_20)
	// magic(8) + definition(4+len) + format(8)
	off := 8 + 4 + len(materialbin.DefinitionName) + 8
	data[off], data[off+1], data[off+2], data[off+3] = 'S', 'M', 'P', 'L'

	_, err := materialbin.Parse(data, materialbin.V1_21_20)
	if !stderrors.Is(err, materialbin.ErrEncrypted) {
		t.Fatalf("error = %v, want ErrEncrypted", err)
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindUnsupported {
		t.Errorf("error = %v, want unsupported", err)
	}
}

func TestParseRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name   string
		anchor string
	}{
		// u16 property type follows the property name
		{"property type", "FogColor"},
		// stage byte follows the platform name of the first shader key
		{"shader stage", materialbin.PlatformESSL100.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := materialtest.Encode("RenderChunk", materialbin.V1_21_110)
			idx := bytes.Index(data, []byte(tt.anchor))
			if idx < 0 {
				t.Fatalf("anchor %q not in fixture", tt.anchor)
			}
			data[idx+len(tt.anchor)] = 0xEE

			_, err := materialbin.Parse(data, materialbin.V1_21_110)
			if err == nil {
				t.Fatal("expected parse error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidData {
				t.Fatalf("error = %v, want invalid data", err)
			}
			if !strings.Contains(err.Error(), "unknown") {
				t.Errorf("error should name the bad value: %v", err)
			}
		})
	}
}

func TestInvalidVersion(t *testing.T) {
	if _, err := materialbin.Parse(nil, materialbin.Version(0)); err == nil {
		t.Error("Parse with version 0 should fail")
	}
	if _, err := materialtest.Material("X").Encode(materialbin.Version(99)); err == nil {
		t.Error("Encode with version 99 should fail")
	}
}

func TestEncodePropertyLengthMismatch(t *testing.T) {
	m := materialtest.Material("RenderChunk")
	m.Properties[0].Data = []float32{1, 2}
	if _, err := m.Encode(materialbin.V1_21_20); err == nil {
		t.Fatal("expected error for short vec4 data")
	}
}

func TestFingerprint(t *testing.T) {
	a := materialtest.Encode("RenderChunk", materialbin.V1_21_20)
	b := materialtest.Encode("RenderChunk", materialbin.V1_21_110)

	fa := materialbin.Fingerprint(a)
	if len(fa) != 64 {
		t.Errorf("len = %d, want 64", len(fa))
	}
	if fa != materialbin.Fingerprint(append([]byte(nil), a...)) {
		t.Error("Fingerprint is not deterministic")
	}
	if fa == materialbin.Fingerprint(b) {
		t.Error("different payloads share a fingerprint")
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want materialbin.Version
		ok   bool
	}{
		{"1.18.30", materialbin.V1_18_30, true},
		{"v1.19.60", materialbin.V1_19_60, true},
		{"1_20_80", materialbin.V1_20_80, true},
		{" 1.21.20 ", materialbin.V1_21_20, true},
		{"1.21.110", materialbin.V1_21_110, true},
		{"1.21.100", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := materialbin.ParseVersion(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseVersion(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestVersionText(t *testing.T) {
	for _, v := range materialbin.AllVersions {
		text, err := v.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", v, err)
		}
		var back materialbin.Version
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != v {
			t.Errorf("text round trip %s -> %s", v, back)
		}
	}
	if _, err := materialbin.Version(0).MarshalText(); err == nil {
		t.Error("MarshalText(0) should fail")
	}
}

func TestNewestFirst(t *testing.T) {
	got := materialbin.NewestFirst()
	if len(got) != len(materialbin.AllVersions) {
		t.Fatalf("len = %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] >= got[i-1] {
			t.Errorf("NewestFirst not descending at %d: %v", i, got)
		}
	}
	got[0] = 0
	if materialbin.AllVersions[len(materialbin.AllVersions)-1] == 0 {
		t.Error("NewestFirst aliases AllVersions")
	}
}
