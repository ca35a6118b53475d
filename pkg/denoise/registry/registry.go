package registry

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/xaionaro-go/pcmdenoise/pkg/denoise"
)

type DenoiserFactory interface {
	NewDenoiser() (denoise.Denoiser, error)
}

type denoiserFactoryWithPriority struct {
	Priority int
	DenoiserFactory
}

var denoiserFactoryRegistry = map[reflect.Type]denoiserFactoryWithPriority{}

func RegisterDenoiserFactory(
	priority int,
	denoiserFactory DenoiserFactory,
) {
	t := reflect.ValueOf(denoiserFactory).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if _, ok := denoiserFactoryRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a factory of Denoiser of type %v", t))
	}
	denoiserFactoryRegistry[t] = denoiserFactoryWithPriority{
		Priority:        priority,
		DenoiserFactory: denoiserFactory,
	}
}

func DenoiserFactories() []DenoiserFactory {
	var factoriesWithPriorities []denoiserFactoryWithPriority
	for _, factory := range denoiserFactoryRegistry {
		factoriesWithPriorities = append(factoriesWithPriorities, factory)
	}
	sort.Slice(factoriesWithPriorities, func(i, j int) bool {
		return factoriesWithPriorities[i].Priority > factoriesWithPriorities[j].Priority
	})

	var factories []DenoiserFactory
	for _, factory := range factoriesWithPriorities {
		factories = append(factories, factory.DenoiserFactory)
	}

	return factories
}
