package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestCollector_ImplementsInterface はCollectorがMetricsCollectorを満たすことを検証する。
func TestCollector_ImplementsInterface(t *testing.T) {
	var _ MetricsCollector = (*Collector)(nil)
}

// counterValue は指定名のカウンタ値を取り出す。存在しない場合は-1を返す。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			if len(mf.GetMetric()) != 1 {
				t.Fatalf("expected 1 metric for %s, got %d", name, len(mf.GetMetric()))
			}
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return -1
}

// TestRecordLoginSuccess_IncrementsCounter はログイン成功カウンタが増加することを検証する。
func TestRecordLoginSuccess_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess()
	c.RecordLoginSuccess()

	if val := counterValue(t, reg, "eventauth_login_success_total"); val != 2 {
		t.Errorf("login_success_total = %v, want 2", val)
	}
}

// TestRecordLoginNotFound_IncrementsCounter は未登録ログイン試行カウンタが増加することを検証する。
func TestRecordLoginNotFound_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginNotFound()

	if val := counterValue(t, reg, "eventauth_login_not_found_total"); val != 1 {
		t.Errorf("login_not_found_total = %v, want 1", val)
	}
}

// TestRecordExchangeFailure_IncrementsCounter は交換失敗カウンタが増加することを検証する。
func TestRecordExchangeFailure_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordExchangeFailure()

	if val := counterValue(t, reg, "eventauth_token_exchange_fail_total"); val != 1 {
		t.Errorf("token_exchange_fail_total = %v, want 1", val)
	}
}

// TestRecordVerificationFailure_IncrementsCounter は検証失敗カウンタが増加することを検証する。
func TestRecordVerificationFailure_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordVerificationFailure()
	c.RecordVerificationFailure()
	c.RecordVerificationFailure()

	if val := counterValue(t, reg, "eventauth_token_verify_fail_total"); val != 3 {
		t.Errorf("token_verify_fail_total = %v, want 3", val)
	}
}

// TestRecordUserCreated_IncrementsCounter はユーザー作成カウンタが増加することを検証する。
func TestRecordUserCreated_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUserCreated()

	if val := counterValue(t, reg, "eventauth_user_created_total"); val != 1 {
		t.Errorf("user_created_total = %v, want 1", val)
	}
}

// TestRecordHTTPStatus_LabelsByStatusCode はステータスコード別にカウントされることを検証する。
func TestRecordHTTPStatus_LabelsByStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(403)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "eventauth_http_status_total" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 2 {
			t.Fatalf("expected 2 labeled metrics, got %d", len(mf.GetMetric()))
		}
		for _, m := range mf.GetMetric() {
			code := m.GetLabel()[0].GetValue()
			val := m.GetCounter().GetValue()
			switch code {
			case "200":
				if val != 2 {
					t.Errorf("http_status_total{status_code=200} = %v, want 2", val)
				}
			case "403":
				if val != 1 {
					t.Errorf("http_status_total{status_code=403} = %v, want 1", val)
				}
			default:
				t.Errorf("unexpected status_code label %q", code)
			}
		}
	}
	if !found {
		t.Error("eventauth_http_status_total metric not found")
	}
}

// TestRecordProviderLatency_ObservesHistogram はレイテンシヒストグラムが記録されることを検証する。
func TestRecordProviderLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProviderLatency("accounts:lookup", 120*time.Millisecond)
	c.RecordProviderLatency("accounts:lookup", 80*time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "eventauth_provider_latency_seconds" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 1 {
			t.Fatalf("expected 1 labeled metric, got %d", len(mf.GetMetric()))
		}
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 2 {
			t.Errorf("sample count = %d, want 2", h.GetSampleCount())
		}
	}
	if !found {
		t.Error("eventauth_provider_latency_seconds metric not found")
	}
}
