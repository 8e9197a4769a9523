package parser

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentParsing tests that 100 goroutines can parse simultaneously
// without race conditions or deadlocks.
func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	errChan := make(chan error, numGoroutines)

	source := []byte(tsxSource)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			tree, err := manager.Parse(source, LanguageTypeScript, true)
			if err != nil {
				errChan <- err
				return
			}
			if tree.RootNode().HasError() {
				errChan <- fmt.Errorf("unexpected syntax error")
			}
			tree.Close()
		}()
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	assert.Empty(t, errs, "No errors should occur during concurrent parsing")

	stats := manager.GetStats()
	maxPoolSize := getPoolSize(0)
	assert.LessOrEqual(t, stats.ParsersCreated, maxPoolSize, "Should create at most %d parsers in pool", maxPoolSize)
	assert.GreaterOrEqual(t, stats.ParsersCreated, 1)
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
}

// TestConcurrentParseModule lowers modules of every grammar at once.
func TestConcurrentParseModule(t *testing.T) {
	manager := NewParserManagerWithPoolSize(testLogger(), 2)
	defer manager.Close()

	syntaxes := []Syntax{
		DefaultSyntax(),
		{Plugins: []string{PluginTypeScript}},
		{Plugins: []string{PluginJSX}},
	}
	sources := []string{tsxSource, tsSource, jsSource}

	const perSyntax = 20
	var wg sync.WaitGroup
	errChan := make(chan error, perSyntax*len(syntaxes))

	for i, syntax := range syntaxes {
		for j := 0; j < perSyntax; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				module, err := manager.ParseModule([]byte(sources[i]), "file", syntax)
				if err != nil {
					errChan <- err
					return
				}
				if len(module.Stmts) != 2 {
					errChan <- fmt.Errorf("syntax %v: got %d statements", syntax.Plugins, len(module.Stmts))
				}
			}()
		}
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		t.Error(err)
	}

	stats := manager.GetStats()
	// Three grammars, at most two parsers each.
	assert.LessOrEqual(t, stats.ParsersCreated, 6)
	assert.Equal(t, perSyntax*len(syntaxes), stats.ParsesCalled)
}

// TestConcurrentPoolCreation races the first use of a grammar.
func TestConcurrentPoolCreation(t *testing.T) {
	manager := NewParserManagerWithPoolSize(testLogger(), 1)
	defer manager.Close()

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			tree, err := manager.Parse([]byte(jsSource), LanguageJavaScript, false)
			if assert.NoError(t, err) {
				tree.Close()
			}
		}()
	}
	wg.Wait()

	stats := manager.GetStats()
	require.Equal(t, 1, stats.ParsersCreated)
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
}
