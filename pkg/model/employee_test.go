package model

import "testing"

func TestEmployee_IsAnchor(t *testing.T) {
	tests := []struct {
		name     string
		position int
		expected bool
	}{
		{"0号是anchor", 0, true},
		{"1号不是anchor", 1, false},
		{"16号不是anchor", 16, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Employee{DisplayPosition: tt.position}
			if result := e.IsAnchor(); result != tt.expected {
				t.Errorf("IsAnchor() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestAvoidanceGroup_Contains(t *testing.T) {
	g := &AvoidanceGroup{
		Name:        "家庭关系",
		EmployeeIDs: []string{"e1", "e2"},
	}

	tests := []struct {
		employeeID string
		expected   bool
	}{
		{"e1", true},
		{"e2", true},
		{"e3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.employeeID, func(t *testing.T) {
			if result := g.Contains(tt.employeeID); result != tt.expected {
				t.Errorf("Contains(%s) = %v, expected %v", tt.employeeID, result, tt.expected)
			}
		})
	}
}
