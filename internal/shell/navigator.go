package shell

import (
	"fmt"
	"io"
	"strings"
)

// PrintNavigator сообщает, какую страницу открыть, вместо перехода в браузере.
type PrintNavigator struct {
	out  io.Writer
	base string
}

// NewPrintNavigator создаёт навигатор, печатающий адреса относительно base.
func NewPrintNavigator(out io.Writer, base string) *PrintNavigator {
	return &PrintNavigator{out: out, base: strings.TrimRight(base, "/")}
}

// Navigate печатает полный адрес страницы.
func (n *PrintNavigator) Navigate(path string) {
	fmt.Fprintf(n.out, "Переход: %s%s\n", n.base, path)
}
