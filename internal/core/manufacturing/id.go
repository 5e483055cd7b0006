package manufacturing

import "fmt"

// GenerateOrderID generates a manufacturing order ID from the current max number.
// The format is MO-XXX where XXX is a zero-padded 3-digit number.
func GenerateOrderID(currentMax int) string {
	return fmt.Sprintf("MO-%03d", currentMax+1)
}

// GenerateWorkOrderID generates a work order ID from the current max number.
func GenerateWorkOrderID(currentMax int) string {
	return fmt.Sprintf("WO-%03d", currentMax+1)
}

// WorkOrderNumber is the human-facing number of a work order within its parent.
func WorkOrderNumber(orderID string, sequence int) string {
	return fmt.Sprintf("%s-%02d", orderID, sequence)
}

// ParseOrderNumber extracts the numeric portion from an order ID.
// Returns -1 if the ID format is invalid.
func ParseOrderNumber(id string) int {
	var num int
	_, err := fmt.Sscanf(id, "MO-%d", &num)
	if err != nil {
		return -1
	}
	return num
}

// ParseWorkOrderNumber extracts the numeric portion from a work order ID.
// Returns -1 if the ID format is invalid.
func ParseWorkOrderNumber(id string) int {
	var num int
	_, err := fmt.Sscanf(id, "WO-%d", &num)
	if err != nil {
		return -1
	}
	return num
}
